//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lawn-quote-service/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	propertyType := flag.String("type", "residential", "residential or commercial")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовый запрос (частный дом, viewport уровня участка)
	event := domain.EstimateRequestedEvent{
		RequestID: uuid.New(),
		Place: domain.Place{
			FormattedAddress: "1600 Elm St, Springfield, IL 62704, USA",
			Location:         &domain.LatLng{Lat: 39.7817, Lng: -89.6501},
			Viewport: &domain.Bounds{
				South: 39.7815, West: -89.6504,
				North: 39.7819, East: -89.6498,
			},
			AddressComponents: []domain.AddressComponent{
				{LongName: "1600", ShortName: "1600", Types: []string{domain.AddressTypeStreetNumber}},
				{LongName: "Elm Street", ShortName: "Elm St", Types: []string{domain.AddressTypeRoute}},
			},
		},
		PropertyType: domain.PropertyType(*propertyType),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamQuoteEstimate,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamQuoteEstimate)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Request ID: %s\n", event.RequestID)
	fmt.Printf("\nWaiting for response in %s...\n", domain.StreamQuoteEstimated)

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for response")
			return
		case <-ticker.C:
			results, err := client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{domain.StreamQuoteEstimated, "0"},
				Count:   100,
				Block:   -1,
			}).Result()
			if err != nil {
				continue
			}

			for _, stream := range results {
				for _, msg := range stream.Messages {
					dataStr, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}

					var response domain.EstimateCompletedEvent
					if err := json.Unmarshal([]byte(dataStr), &response); err != nil {
						continue
					}
					if response.RequestID != event.RequestID {
						continue
					}

					pretty, _ := json.MarshalIndent(response, "", "  ")
					fmt.Printf("\nResponse received:\n%s\n", pretty)
					return
				}
			}
		}
	}
}
