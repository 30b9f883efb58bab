package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/mythgate/dungeonmind/internal/clients/narrative"
	"github.com/mythgate/dungeonmind/internal/config"
	"github.com/mythgate/dungeonmind/internal/dice"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
	"github.com/mythgate/dungeonmind/internal/repositories/gamesessions"
	"github.com/mythgate/dungeonmind/internal/services/gamesession"
	"github.com/mythgate/dungeonmind/internal/services/narrator"
	"github.com/mythgate/dungeonmind/internal/services/party"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	var repo gamesessions.Repository
	if cfg.Redis.Addr != "" {
		log.Printf("Connecting to Redis at: %s", cfg.Redis.Addr)

		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
			cancel()
			log.Printf("Failed to connect to Redis: %v", pingErr)
			log.Println("Falling back to in-memory session store")
			redisClient = nil
		} else {
			cancel()
			log.Println("Using Redis for session persistence")
			repo = gamesessions.NewRedis(redisClient)
		}
	}
	if repo == nil {
		log.Println("Using in-memory session store")
		repo = gamesessions.NewInMemoryRepository()
	}

	// The narrative model is required: without it there is no narration.
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("Failed to create narrative model: %v", err)
	}
	generator, err := narrative.NewClient(ctx, &narrative.ClientConfig{ChatModel: chatModel})
	if err != nil {
		log.Fatalf("Failed to create narrative client: %v", err)
	}

	roller := dice.NewRandomRoller()

	svc := gamesession.NewService(&gamesession.ServiceConfig{
		Repository: repo,
		Party:      party.NewService(&party.ServiceConfig{Roller: roller}),
		Narrator: narrator.NewService(&narrator.ServiceConfig{
			Generator: generator,
			Timeout:   cfg.Narrator.Timeout,
		}),
		Roller: roller,
	})

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runSession(ctx, svc, roller, cfg.Voice.Enabled)
	}()

	select {
	case <-sc:
		fmt.Println("\nShutting down...")
	case <-done:
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}
}

// runSession drives an interactive terminal session
func runSession(ctx context.Context, svc gamesession.Service, roller dice.Roller, voiceMode bool) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Your name, adventurer: ")
	name, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Adventurer"
	}

	created, err := svc.CreateSession(ctx, &gamesession.CreateSessionInput{
		HumanName: name,
		VoiceMode: voiceMode,
	})
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		return
	}

	fmt.Printf("\n=== %s ===\n\n%s\n\n%s\n\n", created.Opening.Title, created.Opening.Description, created.Welcome)
	fmt.Println("Commands: /info, /stats, /roll <notation>, /voice on|off, /end")

	sessionID := created.Session.ID

	for {
		fmt.Printf("\n[%s] > ", name)
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(ctx, svc, roller, sessionID, line); quit {
				return
			}
			continue
		}

		outcome, err := svc.ProcessTurn(ctx, &gamesession.ProcessTurnInput{
			SessionID:  sessionID,
			PlayerName: name,
			Action:     line,
		})
		if err != nil {
			if dmerr.IsUnauthenticated(err) || dmerr.IsUnavailable(err) {
				log.Printf("The narrator is unreachable: %v", err)
				continue
			}
			log.Printf("Turn failed: %v", err)
			continue
		}

		for _, reaction := range outcome.Reactions {
			fmt.Printf("\n%s: %q\n", reaction.CompanionName, reaction.Dialogue)
		}
		fmt.Printf("\nDM: %s\n", outcome.DMTurn.Dialogue)
		fmt.Printf("\n(next turn: %s, turn %d)\n", outcome.CurrentTurn, outcome.TurnNumber)
	}
}

// handleCommand processes a slash command; returns true when the session ends
func handleCommand(ctx context.Context, svc gamesession.Service, roller dice.Roller, sessionID, line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "/end":
		summary, err := svc.EndSession(ctx, sessionID)
		if err != nil {
			log.Printf("Failed to end session: %v", err)
			return true
		}
		fmt.Printf("\nSession over: %s, %d turns across %s. Farewell!\n",
			summary.CampaignTitle, summary.TotalTurns, summary.Duration)
		return true

	case "/info":
		info, err := svc.GetSessionInfo(ctx, sessionID)
		if err != nil {
			log.Printf("Failed to get session info: %v", err)
			return false
		}
		fmt.Printf("\nCampaign: %s\nScene: %s\nTurn order: %s\nCurrent turn: %s\n",
			info.Session.CampaignTitle, info.Session.CurrentScene,
			strings.Join(info.Session.TurnOrder, ", "), info.CurrentTurn)

	case "/stats":
		info, err := svc.GetSessionInfo(ctx, sessionID)
		if err != nil {
			log.Printf("Failed to get session info: %v", err)
			return false
		}
		fmt.Printf("\nParty HP: %d/%d | Level %d | %d gold | %s | %d turns | %s\n",
			info.Stats.HP, info.Stats.MaxHP, info.Stats.Level, info.Stats.Gold,
			info.Stats.Location, info.Stats.TotalTurns, info.Stats.Duration)

	case "/roll":
		if len(fields) < 2 {
			fmt.Println("Usage: /roll <notation>, e.g. /roll 2d6+3")
			return false
		}
		result, err := roller.Roll(fields[1])
		if err != nil {
			fmt.Printf("Bad notation: %v\n", err)
			return false
		}
		fmt.Printf("%s -> %v = %d", result.Notation, result.Rolls, result.Total)
		if result.Critical {
			fmt.Print("  CRITICAL!")
		}
		fmt.Println()

	case "/voice":
		if len(fields) < 2 || (fields[1] != "on" && fields[1] != "off") {
			fmt.Println("Usage: /voice on|off")
			return false
		}
		if err := svc.SetVoiceMode(ctx, sessionID, fields[1] == "on"); err != nil {
			log.Printf("Failed to set voice mode: %v", err)
			return false
		}
		fmt.Printf("Voice mode %s\n", fields[1])

	default:
		fmt.Println("Unknown command. Commands: /info, /stats, /roll <notation>, /voice on|off, /end")
	}

	return false
}
