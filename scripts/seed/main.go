// Seeds a development Redis with a small Vietnamese shop catalog and prints
// a bcrypt hash for ADMIN_PASSWORD_HASH. Run against a disposable instance.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/dongphonui/sigma-vie-shop/internal/bus"
	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/customers"
	"github.com/dongphonui/sigma-vie-shop/internal/store"
)

func main() {
	addr := getenv("REDIS_ADDR", "127.0.0.1:6379")
	password := getenv("SEED_ADMIN_PASSWORD", "doi-mat-khau-nay")

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("connect redis: %v", err)
	}

	events := bus.New()
	productColl := store.NewCollection[catalog.Product](client, "shop:products", bus.EntityProducts, events, nil, nil)
	customerColl := store.NewCollection[customers.Customer](client, "shop:customers", bus.EntityCustomers, events, nil, nil)

	catalogSvc := catalog.NewService(productColl, nil, nil, nil)
	customerSvc := customers.NewService(customerColl, nil, nil)

	fmt.Println("→ Seeding products...")
	products := []catalog.CreateProductRequest{
		{Name: "Ao thun co tron", Price: 150000, Variants: []catalog.VariantInput{
			{Size: "M", Color: "trang", Stock: 20},
			{Size: "L", Color: "trang", Stock: 15},
			{Size: "M", Color: "den", Stock: 25},
		}},
		{Name: "Quan jean nu", Price: 420000, Stock: 30},
		{Name: "Ao khoac gio", Price: 380000, Variants: []catalog.VariantInput{
			{Size: "M", Color: "xanh navy", Stock: 10},
			{Size: "L", Color: "xanh navy", Stock: 8},
		}},
		{Name: "Non luoi trai", Price: 95000, Stock: 50},
	}
	for _, req := range products {
		if _, err := catalogSvc.Create(ctx, req); err != nil {
			log.Fatalf("seed product %q: %v", req.Name, err)
		}
	}

	fmt.Println("→ Seeding customers...")
	custs := []customers.CreateCustomerRequest{
		{Name: "Nguyen Thi Mai", Phone: "0901234567", Address: "12 Le Loi, Q1, TP.HCM"},
		{Name: "Tran Van Hung", Phone: "0912345678", Address: "45 Tran Phu, Da Nang"},
		{Name: "Le Thi Thu", Phone: "0923456789", Email: "thu.le@example.com", Address: "8 Hang Bac, Ha Noi"},
	}
	for _, req := range custs {
		if _, err := customerSvc.Create(ctx, req); err != nil {
			log.Fatalf("seed customer %q: %v", req.Name, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}
	fmt.Println("→ Done. Export this before starting the server:")
	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", string(hash))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
