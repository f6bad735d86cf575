// Command checkout_load fires a burst of guest checkouts at a running
// gateway. Half of the guests double-submit, so the output shows the
// rate limiter (429) and the in-flight guard (409) next to the orders
// that went through.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	baseURL   = flag.String("url", "http://localhost:8080/api/v1", "gateway API root")
	productID = flag.Uint("product", 1, "product to order")
	material  = flag.String("material", "PLA", "material")
	size      = flag.String("size", "Orta", "size")
	color     = flag.String("color", "#ffffff", "color")
	guests    = flag.Int("guests", 50, "simulated guests")
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

var (
	mu     sync.Mutex
	counts = map[int]int{}
	client = &http.Client{Timeout: 5 * time.Second}
)

func post(path, token string, body any) (envelope, error) {
	var env envelope
	raw, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return env, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Token", token)

	resp, err := client.Do(req)
	if err != nil {
		return env, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("status %d: %s", resp.StatusCode, data)
	}
	return env, nil
}

func checkout(guest int, token string) {
	env, err := post("/checkout", token, map[string]any{
		"address": map[string]string{
			"fullName":    fmt.Sprintf("Yük Testi %d", guest),
			"email":       fmt.Sprintf("load-%d@example.com", guest),
			"phone":       "05550000000",
			"city":        "İstanbul",
			"district":    "Kadıköy",
			"fullAddress": "Test Sok. No:1",
		},
		"payment": map[string]any{"method": "Nakit"},
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		fmt.Printf("[guest %d] request failed: %v\n", guest, err)
		counts[0]++
		return
	}
	counts[env.Code]++
	if env.Code == http.StatusCreated {
		fmt.Printf("[guest %d] order placed\n", guest)
	} else {
		fmt.Printf("[guest %d] %d %s\n", guest, env.Code, env.Msg)
	}
}

func run(guest int, wg *sync.WaitGroup) {
	defer wg.Done()

	token := uuid.NewString()
	env, err := post("/cart/items", token, map[string]any{
		"productId": *productID,
		"material":  *material,
		"size":      *size,
		"color":     *color,
		"quantity":  1,
	})
	if err != nil || env.Code != http.StatusOK {
		fmt.Printf("[guest %d] add to cart failed: %v %s\n", guest, err, env.Msg)
		return
	}

	if guest%2 == 0 {
		var inner sync.WaitGroup
		inner.Add(2)
		for range 2 {
			go func() {
				defer inner.Done()
				checkout(guest, token)
			}()
		}
		inner.Wait()
		return
	}
	checkout(guest, token)
}

func main() {
	flag.Parse()
	fmt.Printf("starting %d guest checkouts against %s\n", *guests, *baseURL)

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < *guests; i++ {
		wg.Add(1)
		go run(i, &wg)
	}
	wg.Wait()

	fmt.Println("--------------------------------")
	fmt.Printf("took %v\n", time.Since(start))
	for code, n := range counts {
		fmt.Printf("code %d: %d\n", code, n)
	}
}
