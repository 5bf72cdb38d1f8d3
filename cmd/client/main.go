package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/flightgate/client"
)

// A small command-line client, mostly for poking at a running server.
func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "server address")
	username := flag.String("user", "", "username for login")
	password := flag.String("pass", "", "password for login")
	origin := flag.String("origin", "", "search: origin airport")
	destination := flag.String("dest", "", "search: destination airport")
	date := flag.String("date", "", "search: departure date (YYYY-MM-DD)")
	book := flag.Int64("book", 0, "flight_id to book (requires -user/-pass)")
	cancel := flag.Int64("cancel", 0, "booking_id to cancel")
	orders := flag.Bool("orders", false, "list my orders (requires -user/-pass)")
	flag.Parse()

	ctx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()

	c, err := client.Dial(ctx, *addr, client.Options{})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer c.Close()
	log.Printf("registered as %s", c.Tag())

	var userID int64
	if *username != "" {
		resp, err := c.Login(ctx, *username, *password)
		if err != nil {
			log.Fatalf("login: %v", err)
		}
		if !resp.OK() {
			log.Fatalf("login rejected: %s", resp.Message)
		}
		if data, ok := resp.Data.(map[string]interface{}); ok {
			if id, ok := data["user_id"].(float64); ok {
				userID = int64(id)
			}
		}
		log.Printf("logged in as %s (user_id=%d)", *username, userID)
	}

	switch {
	case *book > 0:
		show(c.BookFlight(ctx, userID, *book))
	case *cancel > 0:
		show(c.CancelOrder(ctx, *cancel))
	case *orders:
		show(c.MyOrders(ctx, userID))
	default:
		show(c.SearchFlights(ctx, *origin, *destination, *date))
	}
}

func show(resp *client.Response, err error) {
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	out, _ := json.MarshalIndent(map[string]interface{}{
		"status":  resp.Status,
		"message": resp.Message,
		"data":    resp.Data,
	}, "", "  ")
	fmt.Println(string(out))
}
