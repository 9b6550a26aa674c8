package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"mentorlink/backend/internal/chatapi"
	"mentorlink/backend/internal/chatsync"
	"mentorlink/backend/internal/models"

	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "messaging service base URL")
	token := flag.String("token", "", "bearer token (a fresh anonymous one is fetched when empty)")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()

	userID := ""
	if *token == "" {
		t, id, err := chatapi.FetchToken(ctx, *server)
		if err != nil {
			logger.Fatal("failed to fetch token", zap.Error(err))
		}
		*token, userID = t, id
	}

	api := chatapi.New(*server, *token)
	directory := chatsync.NewDirectory(api)

	wsEndpoint := strings.Replace(*server, "http", "ws", 1) + "/ws"
	channel := chatsync.NewChannel(wsEndpoint, *token, logger)

	engine := chatsync.NewEngine(api, channel, logger)
	if err := engine.Start(); err != nil {
		logger.Fatal("failed to start sync engine", zap.Error(err))
	}
	defer engine.Stop()

	go printLoop(engine, userID)
	go func() {
		for err := range engine.Notifications() {
			fmt.Fprintf(os.Stderr, "! %v\n", err)
		}
	}()

	fmt.Printf("connected as %s\n", userID)
	fmt.Println("commands: /list, /open <n>, /chat <mentor-id>, /quit; anything else is sent")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return

		case line == "/list":
			if err := directory.Refresh(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "! %v\n", err)
				continue
			}
			for i, conv := range directory.Conversations() {
				fmt.Printf("%d: %s (updated %s)\n", i, conv.ID, conv.UpdatedAt.Format("2006-01-02 15:04"))
			}

		case strings.HasPrefix(line, "/open "):
			idx, err := strconv.Atoi(strings.TrimPrefix(line, "/open "))
			convs := directory.Conversations()
			if err != nil || idx < 0 || idx >= len(convs) {
				fmt.Fprintln(os.Stderr, "! unknown conversation, run /list first")
				continue
			}
			engine.SelectConversation(convs[idx].ID)

		case strings.HasPrefix(line, "/chat "):
			conv, err := directory.Open(ctx, strings.TrimPrefix(line, "/chat "))
			if err != nil {
				fmt.Fprintf(os.Stderr, "! %v\n", err)
				continue
			}
			engine.SelectConversation(conv.ID)

		default:
			active, ok := engine.ActiveConversation()
			if !ok {
				fmt.Fprintln(os.Stderr, "! no conversation open")
				continue
			}
			if err := engine.SendMessage(ctx, active, line); err != nil {
				fmt.Fprintf(os.Stderr, "! %v\n", err)
			}
		}
	}
}

// printLoop renders log changes. The engine coalesces update signals, so a
// change may cover several new messages at once.
func printLoop(engine *chatsync.Engine, selfID string) {
	var shown []models.Message

	for range engine.Updates() {
		current := engine.Log()

		// Reprint everything when the view switched or reordered,
		// otherwise just the tail.
		start := 0
		if len(current) >= len(shown) && samePrefix(shown, current) {
			start = len(shown)
		}
		for _, msg := range current[start:] {
			who := msg.SenderID
			if who == selfID {
				who = "me"
			}
			fmt.Printf("[%s] %s: %s\n", msg.CreatedAt.Format("15:04:05"), who, msg.Content)
		}
		shown = current
	}
}

func samePrefix(prev, next []models.Message) bool {
	for i := range prev {
		if prev[i].ID != next[i].ID {
			return false
		}
	}
	return true
}
