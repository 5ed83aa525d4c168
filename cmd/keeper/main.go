package main

import (
	"context"
	"log"

	"github.com/tymchak1/flow-roles/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, "configs/default.yaml")
	if err != nil {
		log.Fatalf("bootstrap keeper runtime: %v", err)
	}
	if err := runtime.RunKeeper(ctx); err != nil {
		log.Fatalf("run keeper: %v", err)
	}
}
