package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Consul    ConsulConfig    `mapstructure:"consul"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Mysql     MysqlConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Shop      ShopConfig      `mapstructure:"shop"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Elastic   ElasticConfig   `mapstructure:"elastic"`
	SendGrid  SendGridConfig  `mapstructure:"sendgrid"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Tracer    TracerConfig    `mapstructure:"tracer"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug | release | test
}

type ConsulConfig struct {
	Address string `mapstructure:"address"`
}

// DatabaseConfig selects the gorm driver. Mysql settings live in MysqlConfig,
// the other drivers take a DSN.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN    string `mapstructure:"dsn"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	AdminEmail string        `mapstructure:"admin_email"`
}

type ShopConfig struct {
	OrderPrefix        string            `mapstructure:"order_prefix"`
	CartTTL            time.Duration     `mapstructure:"cart_ttl"`
	InflightTTL        time.Duration     `mapstructure:"inflight_ttl"`
	CriticalStock      int               `mapstructure:"critical_stock"`
	MaterialSurcharges map[string]string `mapstructure:"material_surcharges"`
	WelcomeCoupon      CouponConfig      `mapstructure:"welcome_coupon"`
}

type CouponConfig struct {
	Code        string `mapstructure:"code"`
	Rate        string `mapstructure:"rate"`
	Description string `mapstructure:"description"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type ElasticConfig struct {
	URL   string `mapstructure:"url"`
	Index string `mapstructure:"index"`
}

type SendGridConfig struct {
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
}

type StorageConfig struct {
	Bucket   string `mapstructure:"bucket"`
	LocalDir string `mapstructure:"local_dir"`
}

type TracerConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type RateLimitConfig struct {
	CheckoutQPS float64 `mapstructure:"checkout_qps"`
	RequestQPS  float64 `mapstructure:"request_qps"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "bulut3d-gateway")
	v.SetDefault("service.port", 8080)
	v.SetDefault("service.mode", "debug")
	v.SetDefault("consul.address", "")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("mysql.host", "127.0.0.1")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.dbname", "bulut3d")
	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_email", "info@bulut3dbaski.com")
	v.SetDefault("shop.order_prefix", "BLT")
	v.SetDefault("shop.cart_ttl", 7*24*time.Hour)
	v.SetDefault("shop.inflight_ttl", 30*time.Second)
	v.SetDefault("shop.critical_stock", 5)
	v.SetDefault("shop.material_surcharges", map[string]string{"ABS": "50"})
	v.SetDefault("shop.welcome_coupon.code", "HOSGELDIN10")
	v.SetDefault("shop.welcome_coupon.rate", "0.10")
	v.SetDefault("shop.welcome_coupon.description", "Yeni üyelere özel %10 indirim")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "bulut3d.events")
	v.SetDefault("elastic.url", "")
	v.SetDefault("elastic.index", "products")
	v.SetDefault("sendgrid.api_key", "")
	v.SetDefault("sendgrid.from", "info@bulut3dbaski.com")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("tracer.endpoint", "")
	v.SetDefault("tracer.sample_ratio", 1.0)
	v.SetDefault("ratelimit.checkout_qps", 5)
	v.SetDefault("ratelimit.request_qps", 2)
}

// LoadConfig reads config.yaml from path. A missing file is not an error:
// defaults and environment variables (MYSQL_HOST -> mysql.host) still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		log.Printf("[config] no config file in %s, using defaults and environment", path)
	} else {
		log.Printf("[config] loaded %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Auth.JWTSecret == "" {
		return nil, errors.New("config: auth.jwt_secret is required")
	}
	return &config, nil
}
