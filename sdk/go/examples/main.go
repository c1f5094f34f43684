package main

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"WebTool-Platform/internal/agent"
	"WebTool-Platform/internal/api"
	"WebTool-Platform/internal/dispatch"
	"WebTool-Platform/internal/llm/echo"
	"WebTool-Platform/internal/registry"
	"WebTool-Platform/sdk/go/webtool"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reg, err := registry.Default(agent.Builtin())
	if err != nil {
		panic(err)
	}
	svc := dispatch.New(reg, agent.NewExecutor(echo.NewClient("")))
	srv := httptest.NewServer(api.NewServer(svc, api.Options{}).Handler(ctx))
	defer srv.Close()

	client, err := webtool.NewClient(srv.URL, webtool.WithHTTPClient(srv.Client()))
	if err != nil {
		panic(err)
	}

	listing, err := client.List(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%d agents, %d tools\n", len(listing.Agents), len(listing.Tools))

	color, err := client.Process(ctx, "hex-to-rgb", webtool.ProcessRequest{Prompt: "#1E90FF"})
	if err != nil {
		panic(err)
	}
	fmt.Printf("hex-to-rgb -> %s\n", color.Content)

	story, err := client.Process(ctx, "story-generator", webtool.ProcessRequest{
		Prompt:      "A lighthouse keeper finds a message in a bottle",
		UserContext: webtool.Context{{Key: "tone", Value: "mysterious"}},
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("story-generator (%s) -> %s\n", story.ExecutionID, story.Content)

	if _, err := client.Process(ctx, "unknown-tool", webtool.ProcessRequest{Prompt: "x"}); err != nil {
		fmt.Printf("expected failure: %v\n", err)
	}
}
