package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulut3d/apps/address"
	"bulut3d/apps/admin"
	"bulut3d/apps/cart"
	"bulut3d/apps/coupon"
	"bulut3d/apps/customer"
	"bulut3d/apps/gateway/middleware"
	"bulut3d/apps/gateway/router"
	"bulut3d/apps/order"
	"bulut3d/apps/product"
	"bulut3d/apps/request"
	"bulut3d/apps/review"
	"bulut3d/apps/user"
	"bulut3d/pkg/blob"
	"bulut3d/pkg/config"
	"bulut3d/pkg/database"
	"bulut3d/pkg/discovery"
	"bulut3d/pkg/events"
	"bulut3d/pkg/inflight"
	"bulut3d/pkg/jwt"
	"bulut3d/pkg/mailer"
	"bulut3d/pkg/search"
	"bulut3d/pkg/tracer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[gateway] .env not loaded: %v", err)
	}
	if err := run(); err != nil {
		log.Fatalf("[gateway] %v", err)
	}
}

// run returns instead of exiting so the deferred cleanups always run.
func run() error {
	c, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gin.SetMode(c.Service.Mode)

	db, err := database.Open(c.Database, c.Mysql)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := router.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	rdb, err := database.InitRedis(c.Redis)
	if err != nil {
		return fmt.Errorf("connect to Redis: %w", err)
	}
	defer rdb.Close()

	var mw []gin.HandlerFunc
	if c.Tracer.Endpoint != "" {
		shutdown, err := tracer.Init(tracer.Options{
			ServiceName: c.Service.Name,
			Endpoint:    c.Tracer.Endpoint,
			Environment: c.Service.Mode,
			SampleRatio: c.Tracer.SampleRatio,
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("[tracer] shutdown: %v", err)
			}
		}()
		mw = append(mw, otelgin.Middleware(c.Service.Name))
	}

	var publisher events.Publisher = events.Nop{}
	if c.RabbitMQ.URL != "" {
		mq, err := events.NewRabbitMQ(c.RabbitMQ.URL, c.RabbitMQ.Exchange)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer mq.Close()
		publisher = mq
	}

	var indexer search.Indexer = search.Nop{}
	if c.Elastic.URL != "" {
		es, err := search.NewElastic(c.Elastic.URL, c.Elastic.Index)
		if err != nil {
			return fmt.Errorf("connect to Elasticsearch: %w", err)
		}
		indexer = es
	}

	var mail mailer.Sender = mailer.Log{}
	if c.SendGrid.APIKey != "" {
		mail = mailer.NewSendGrid(c.SendGrid.APIKey, c.SendGrid.From)
	}

	var store blob.Store = blob.Local{Dir: c.Storage.LocalDir}
	if c.Storage.Bucket != "" {
		gcs, err := blob.NewGCS(context.Background(), c.Storage.Bucket)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer gcs.Close()
		store = gcs
	}

	rules, err := product.ParsePriceRules(c.Shop.MaterialSurcharges)
	if err != nil {
		return fmt.Errorf("invalid shop.material_surcharges: %w", err)
	}
	rate, err := decimal.NewFromString(c.Shop.WelcomeCoupon.Rate)
	if err != nil {
		return fmt.Errorf("invalid shop.welcome_coupon.rate: %w", err)
	}

	products := product.NewService(db, indexer, rules)
	carts := cart.NewService(rdb, c.Shop.CartTTL, products, rules)
	coupons := coupon.NewService(db, coupon.Template{
		Code:        c.Shop.WelcomeCoupon.Code,
		Rate:        rate,
		Description: c.Shop.WelcomeCoupon.Description,
	})
	guard := inflight.NewRedis(rdb, c.Shop.InflightTTL)
	signer := jwt.NewSigner(c.Auth.JWTSecret, c.Auth.TokenTTL)

	if err := middleware.InitSentinel(map[string]float64{
		middleware.ResCheckout:      c.RateLimit.CheckoutQPS,
		middleware.ResCustomRequest: c.RateLimit.RequestQPS,
	}); err != nil {
		return fmt.Errorf("init sentinel: %w", err)
	}

	r := router.New(router.Deps{
		Products:   products,
		Carts:      carts,
		Wishlist:   cart.NewWishlist(rdb),
		Orders:     order.NewService(db, carts, guard, publisher, c.Shop.OrderPrefix),
		Requests:   request.NewService(db, store, mail, publisher),
		Customers:  customer.NewService(db),
		Coupons:    coupons,
		Users:      user.NewService(db, rdb, signer, c.Auth.AdminEmail, coupons),
		Admin:      admin.NewService(db, c.Shop.CriticalStock),
		Addresses:  address.NewService(db),
		Reviews:    review.NewService(db),
		Limiter:    middleware.RateLimit,
		Middleware: mw,
	})

	if c.Consul.Address != "" {
		deregister, err := discovery.RegisterService(discovery.Registration{
			Name:       c.Service.Name,
			Port:       c.Service.Port,
			HealthPath: "/healthz",
		}, c.Consul.Address)
		if err != nil {
			return fmt.Errorf("register service: %w", err)
		}
		defer func() {
			if err := deregister(); err != nil {
				log.Printf("[discovery] deregister failed: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", c.Service.Port),
		Handler: r,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Gateway running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[gateway] shutdown: %v", err)
	}
	return nil
}
