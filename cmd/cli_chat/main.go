package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"talk-to-me/internal/client"
	"talk-to-me/internal/config"
	"talk-to-me/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	chat := client.NewHTTPClient(cfg.APIURL, cfg.Timeout, logger)
	conv := client.NewConversation(chat, logger)

	userLabel := color.New(color.FgGreen, color.Bold).SprintFunc()
	agentLabel := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Println(color.New(color.Bold).Sprint("Talk To Me"))
	fmt.Println("Casual conversation, always on. Type 'exit' to quit.")
	fmt.Println()
	for _, m := range conv.Messages() {
		printMessage(m, userLabel, agentLabel)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print(userLabel("You: "))
		var line string
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}

		if strings.EqualFold(strings.TrimSpace(line), "exit") {
			return
		}

		reply, err := conv.Send(ctx, line)
		switch {
		case errors.Is(err, client.ErrEmptyPrompt):
			continue
		case err != nil:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printMessage(reply, userLabel, agentLabel)
	}
}

func printMessage(m domain.Message, userLabel, agentLabel func(a ...interface{}) string) {
	if m.Role == domain.RoleAssistant {
		fmt.Printf("%s %s\n\n", agentLabel("Agent:"), m.Text)
		return
	}
	fmt.Printf("%s %s\n", userLabel("You:"), m.Text)
}
