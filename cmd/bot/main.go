package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"teemixer/internal/bot"
	"teemixer/internal/config"
	"teemixer/internal/db"
	"teemixer/internal/scheduler"
	"teemixer/internal/version"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	testMode := flag.Bool("test", false, "test mode: instant invite and a one-minute signup window")
	tokenFlag := flag.String("token", "", "bot token (overrides TELEGRAM_BOT_TOKEN)")
	onceInvite := flag.Bool("once-invite", false, "send today's invites once and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		log.Println("teemixer version", version.Version)
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	if *tokenFlag != "" {
		cfg.Token = *tokenFlag
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	log.Printf("startup: version=%s pid=%d", version.Version, os.Getpid())
	st, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()
	if err := st.UpsertToken(cfg.Token); err != nil {
		log.Fatal(err)
	}
	chats, _ := st.ListChatIDs()
	log.Printf("startup: chats=%d group_size=%d daily_time=%s", len(chats), cfg.GroupSize, cfg.DailyTime)

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		log.Fatal(err)
	}
	api.Debug = false

	b := bot.New(api, st)
	b.DefaultGroupSize = cfg.GroupSize
	b.DefaultDailyTime = cfg.DailyTime
	b.TestMode = *testMode
	if *testMode {
		b.SignupWindow = time.Minute
	}
	if *onceInvite {
		log.Println("manual once-invite trigger start")
		b.SendDailyInvites()
		log.Println("manual once-invite trigger done; exiting")
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sch := scheduler.New(st)
	sch.OnInviteChat = b.SendInviteToChat
	sch.OnCloseSessions = func(ids []int64) {
		for _, id := range ids {
			b.CloseAndPublish(ctx, id)
		}
	}
	if *testMode {
		sch.DisableDaily = true
		sch.CloseInterval = 5 * time.Second
		b.SendDailyInvites()
	}
	sch.Start(ctx)

	b.Start(ctx)
}
