package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/anonkampus/matchmaker/internal/config"
	"github.com/anonkampus/matchmaker/internal/core"
	"github.com/anonkampus/matchmaker/internal/messaging"
	"github.com/anonkampus/matchmaker/internal/metrics"
	"github.com/anonkampus/matchmaker/internal/protocol"
	"github.com/anonkampus/matchmaker/internal/ratelimit"
	"github.com/anonkampus/matchmaker/internal/report"
	"github.com/anonkampus/matchmaker/internal/snapshot"
	"github.com/anonkampus/matchmaker/internal/user"
)

func main() {
	log.Println("Starting Anonymous Kampus matchmaking service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	coreCfg, err := cfg.CoreConfig()
	if err != nil {
		log.Fatalf("failed to build matchmaking policy: %v", err)
	}
	if len(cfg.Moderators) == 0 {
		log.Printf("[matchmaker] warning: no MODERATOR_IDS configured, verification verdicts will be rejected")
	}

	// --- NATS ---
	natsConfig := messaging.DefaultNATSConfig()
	natsConfig.URL = cfg.NATSURL
	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}
	notifier := messaging.NewNotifier(natsClient)

	// --- Redis (snapshots + rate limiting) ---
	store, err := snapshot.NewStore(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	limiter := ratelimit.NewLimiter(store.Client())

	// --- Postgres (moderation-ticket archive, optional) ---
	var archive *report.Archive
	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to open Postgres: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("failed to connect to Postgres: %v", err)
		}
		if err := report.Migrate(db); err != nil {
			log.Fatalf("failed to migrate ticket archive: %v", err)
		}
		archive = report.NewArchive(db)
	} else {
		log.Printf("[matchmaker] POSTGRES_DSN not set, ticket archiving disabled")
	}

	// --- Core ---
	c := core.New(coreCfg, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	restoreCtx, restoreCancel := context.WithTimeout(ctx, 10*time.Second)
	profiles, err := store.LoadAll(restoreCtx)
	restoreCancel()
	if err != nil {
		log.Fatalf("failed to restore profiles: %v", err)
	}
	c.Restore(profiles)
	log.Printf("[matchmaker] restored %d profiles", len(profiles))

	if err := subscribeActions(ctx, natsClient, notifier, c, limiter, archive); err != nil {
		log.Fatalf("failed to subscribe to action subjects: %v", err)
	}

	go snapshotLoop(ctx, c, store, cfg.SnapshotInterval)

	// --- Metrics / health ---
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	httpServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[matchmaker] metrics server: %v", err)
		}
	}()

	log.Printf("Anonymous Kampus matchmaking service running")
	log.Printf("  nats_url:     %s", cfg.NATSURL)
	log.Printf("  redis_addr:   %s", cfg.RedisAddr)
	log.Printf("  metrics_addr: %s", cfg.MetricsAddr)
	log.Printf("  moderators:   %d", len(cfg.Moderators))
	log.Printf("  window:       %s -> %s (%s)", cfg.WindowFrom, cfg.WindowUntil, cfg.Timezone)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	cancel()

	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.SaveAll(saveCtx, c.Snapshot()); err != nil {
		log.Printf("[matchmaker] final snapshot failed: %v", err)
	}
	saveCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	httpServer.Shutdown(shutdownCtx)
	shutdownCancel()

	natsClient.Close()
	store.Close()
	if db != nil {
		db.Close()
	}
}

// snapshotLoop periodically flushes the registry to Redis so that profiles,
// verification, and bans survive a restart.
func snapshotLoop(ctx context.Context, c *core.Core, store *snapshot.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[matchmaker] snapshot loop stopped")
			return
		case <-ticker.C:
			saveCtx, saveCancel := context.WithTimeout(ctx, 10*time.Second)
			if err := store.SaveAll(saveCtx, c.Snapshot()); err != nil {
				log.Printf("[matchmaker] snapshot failed: %v", err)
			}
			saveCancel()
		}
	}
}

// subscribeActions wires every inbound action subject to its core operation.
// Failed operations are surfaced to the acting user or moderator and never
// stop the service.
func subscribeActions(
	ctx context.Context,
	natsClient *messaging.NATSClient,
	notifier *messaging.Notifier,
	c *core.Core,
	limiter *ratelimit.Limiter,
	archive *report.Archive,
) error {
	// notifyOutcome maps a core error to a user-facing notification.
	notifyOutcome := func(userID string, err error) {
		notifier.NotifyUser(userID, protocol.UserNotification{
			Type: protocol.NotifError,
			Text: userFacing(err),
		})
	}

	subs := map[string]func(data []byte){
		messaging.SubjectOnboard: func(data []byte) {
			var req protocol.OnboardRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid onboard request: %v", err)
				return
			}
			sub := core.Submission{
				Affiliation: req.Affiliation,
				Gender:      user.Gender(req.Gender),
				Age:         req.Age,
			}
			if err := c.SubmitOnboarding(req.UserID, sub); err != nil {
				notifyOutcome(req.UserID, err)
				return
			}
			notifier.NotifyUser(req.UserID, protocol.UserNotification{
				Type: protocol.NotifQueueStatus,
				Text: "Your profile was sent to the moderators for verification. Hang tight!",
			})
		},

		messaging.SubjectMatch: func(data []byte) {
			var req protocol.MatchRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid match request: %v", err)
				return
			}
			if allowed, _ := limiter.Allow(ctx, req.UserID, ratelimit.RuleMatch); !allowed {
				notifier.NotifyUser(req.UserID, protocol.UserNotification{
					Type: protocol.NotifRateLimited,
					Text: "Too many match requests. Slow down a little.",
				})
				return
			}
			res, err := c.RequestMatch(req.UserID, user.Mode(req.Mode), time.Now())
			if err != nil {
				notifyOutcome(req.UserID, err)
				return
			}
			switch res.Outcome {
			case core.OutcomeWaiting:
				notifier.NotifyUser(req.UserID, protocol.UserNotification{
					Type:  protocol.NotifQueueStatus,
					Text:  "Searching for a partner... use stop to cancel.",
					Stats: &res.Stats,
				})
			case core.OutcomeAlreadySearching:
				notifier.NotifyUser(req.UserID, protocol.UserNotification{
					Type:  protocol.NotifQueueStatus,
					Text:  "You are already searching for a partner. Use stop to cancel.",
					Stats: &res.Stats,
				})
			case core.OutcomeMatched:
				// Both sides were notified by the core.
				log.Printf("[matchmaker] paired %s with %s (mode=%s)", req.UserID, res.PartnerID, req.Mode)
			}
		},

		messaging.SubjectStop: func(data []byte) {
			var req protocol.StopRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid stop request: %v", err)
				return
			}
			var text string
			switch c.Stop(req.UserID) {
			case core.StopEndedChat:
				text = "You left the conversation."
			case core.StopCancelledSearch:
				text = "Partner search cancelled."
			default:
				text = "You are not searching or chatting right now."
			}
			notifier.NotifyUser(req.UserID, protocol.UserNotification{
				Type: protocol.NotifQueueStatus,
				Text: text,
			})
		},

		messaging.SubjectMessage: func(data []byte) {
			var req protocol.MessageRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid message request: %v", err)
				return
			}
			if allowed, _ := limiter.Allow(ctx, req.UserID, ratelimit.RuleMessage); !allowed {
				notifier.NotifyUser(req.UserID, protocol.UserNotification{
					Type: protocol.NotifRateLimited,
					Text: "You are sending messages too fast.",
				})
				return
			}
			if err := c.Relay(req.UserID, req.Text); err != nil {
				notifyOutcome(req.UserID, err)
			}
		},

		messaging.SubjectReport: func(data []byte) {
			var req protocol.ReportRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid report request: %v", err)
				return
			}
			if allowed, _ := limiter.Allow(ctx, req.UserID, ratelimit.RuleReport); !allowed {
				notifier.NotifyUser(req.UserID, protocol.UserNotification{
					Type: protocol.NotifRateLimited,
					Text: "You have filed too many reports recently.",
				})
				return
			}
			ticket, err := c.Report(req.UserID)
			if err != nil {
				notifyOutcome(req.UserID, err)
				return
			}
			if archive != nil {
				archiveCtx, archiveCancel := context.WithTimeout(ctx, 5*time.Second)
				if err := archive.Create(archiveCtx, ticket); err != nil {
					log.Printf("[matchmaker] archive ticket %s: %v", ticket.ID, err)
				} else if n, err := archive.CountRecent(archiveCtx, ticket.ReportedID, 24*time.Hour); err == nil && n >= 3 {
					log.Printf("[matchmaker] user %s has %d reports in 24h", ticket.ReportedID, n)
				}
				archiveCancel()
			}
			notifier.NotifyUser(req.UserID, protocol.UserNotification{
				Type: protocol.NotifQueueStatus,
				Text: "Your report was sent to the moderators. Thank you!",
			})
		},

		messaging.SubjectDecide: func(data []byte) {
			var req protocol.DecideRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid decide request: %v", err)
				return
			}
			if err := c.Decide(req.ModeratorID, req.TargetID, req.Approve); err != nil {
				notifyOutcome(req.ModeratorID, err)
				return
			}
			log.Printf("[matchmaker] moderator %s decided %s approve=%v", req.ModeratorID, req.TargetID, req.Approve)
		},

		messaging.SubjectBan: func(data []byte) {
			var req protocol.BanRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid ban request: %v", err)
				return
			}
			if err := c.SetBanned(req.ModeratorID, req.TargetID, req.Banned); err != nil {
				notifyOutcome(req.ModeratorID, err)
				return
			}
			log.Printf("[matchmaker] moderator %s set banned=%v on %s", req.ModeratorID, req.Banned, req.TargetID)
		},

		messaging.SubjectProfile: func(data []byte) {
			var req protocol.ProfileRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid profile request: %v", err)
				return
			}
			pv := c.ProfileView(req.UserID)
			notifier.NotifyUser(req.UserID, protocol.UserNotification{
				Type:    protocol.NotifProfile,
				Profile: &pv,
			})
		},

		messaging.SubjectListUsers: func(data []byte) {
			var req protocol.ListUsersRequest
			if err := json.Unmarshal(data, &req); err != nil {
				log.Printf("[matchmaker] invalid list request: %v", err)
				return
			}
			views, err := c.ListUsers(req.ModeratorID, core.Filter(req.Filter))
			if err != nil {
				notifyOutcome(req.ModeratorID, err)
				return
			}
			notifier.NotifyModerators(protocol.ModeratorNotification{
				Type:     protocol.ModNotifUserList,
				Profiles: views,
			})
		},
	}

	for subject, handler := range subs {
		if err := natsClient.Subscribe(subject, handler); err != nil {
			return err
		}
	}
	return nil
}

// userFacing turns a core error into the message shown to the actor.
func userFacing(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidProfile):
		return "That profile is not valid: " + trimPrefix(err)
	case errors.Is(err, core.ErrNotEligible):
		return "You cannot search right now. Make sure you are verified, not banned, and not already chatting."
	case errors.Is(err, core.ErrOutsideWindow):
		return "Cari doi is only open on weekend evenings. Come back later!"
	case errors.Is(err, core.ErrNoActivePartner):
		return "You are not in an anonymous conversation right now."
	case errors.Is(err, core.ErrNotPending):
		return "That user has no verification waiting for a verdict."
	case errors.Is(err, core.ErrUnauthorized):
		return "You are not a moderator."
	default:
		return "Something went wrong. Please try again."
	}
}

// trimPrefix strips the wrapped sentinel prefix from a validation error,
// leaving the human-readable detail.
func trimPrefix(err error) string {
	msg := err.Error()
	if i := len(core.ErrInvalidProfile.Error()) + 2; i < len(msg) {
		return msg[i:]
	}
	return msg
}
