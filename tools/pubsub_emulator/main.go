package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Topics of scene-export -ps-tasks-topic and -ps-events-topic
var tasksTopic = "scene-export-tasks"
var eventsTopic = "scene-export-events"

var tasksSubscription = "scene-export-tasks"
var eventsSubscription = "scene-export-events"

func main() {
	ctx := context.Background()

	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		os.Setenv("PUBSUB_EMULATOR_HOST", "localhost:8085")
	}

	projectID := flag.String("project", "scene-export-emulator", "emulator project")
	flag.Parse()

	log.Print("New client for project " + *projectID)
	client, err := pubsub.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("pubsub.NewClient: %v", err)
	}
	defer client.Close()

	for topic, subscription := range map[string]string{tasksTopic: tasksSubscription, eventsTopic: eventsSubscription} {
		log.Print("Create Topic : " + topic)
		if _, err = client.CreateTopic(ctx, topic); err != nil && status.Code(err) != codes.AlreadyExists {
			log.Fatalf("pubsub.CreateTopic: %v", err)
		}

		log.Print("Create Subscription : " + subscription)
		if _, err = client.CreateSubscription(ctx, subscription, pubsub.SubscriptionConfig{
			Topic:       client.Topic(topic),
			AckDeadline: 10 * time.Second,
		}); err != nil && status.Code(err) != codes.AlreadyExists {
			log.Fatalf("CreateSubscription: %v", err)
		}
	}

	log.Print("Done!")
}
