package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"icc-assistant/internal/api"
	"icc-assistant/internal/config"
	"icc-assistant/internal/gate"
	"icc-assistant/internal/health"
	"icc-assistant/internal/query"
	"icc-assistant/internal/session"
	"icc-assistant/internal/terminal"
	"icc-assistant/internal/ui"
)

func main() {
	cfg := parseFlags()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.Verbose)

	display := ui.NewDisplay()

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	store := session.NewStore(client)

	// The transport reports session expiry here no matter which
	// component issued the request; the gate then redirects to login.
	client.SetUnauthorizedHandler(store.Logout)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		display.StopSpinner()
		display.PrintGoodbye()
		cancel()
		os.Exit(0)
	}()

	display.PrintWelcome(cfg.APIBaseURL)

	// Boot-time session check: happens once per process, not per view
	display.ShowSpinner("Checking session...")
	store.Verify(ctx)
	display.StopSpinner()

	app := &app{
		cfg:     cfg,
		display: display,
		client:  client,
		store:   store,
	}
	app.run(ctx)
}

// app wires the session store, transport and views together
type app struct {
	cfg     *config.Config
	display *ui.Display
	client  *api.Client
	store   *session.Store
}

// run drives the view loop. The gate is consulted before every view so
// a session change, including a transport-forced expiry, redirects on
// the next step.
func (a *app) run(ctx context.Context) {
	for {
		switch gate.Decide(a.store.Snapshot()) {
		case gate.RouteLoading:
			// Verify runs synchronously at boot; nothing renders here
			time.Sleep(50 * time.Millisecond)
		case gate.RouteLogin:
			if !a.runLogin(ctx) {
				a.display.PrintGoodbye()
				return
			}
		case gate.RouteChat:
			if !a.runChat(ctx) {
				a.display.PrintGoodbye()
				return
			}
		}
	}
}

// runLogin is the entry view. Returns false when the user quits.
func (a *app) runLogin(ctx context.Context) bool {
	a.display.PrintInfo("Please log in. Type /exit to quit.")

	for {
		fmt.Print("Username: ")
		username, err := terminal.ReadLine()
		if err != nil {
			return false
		}
		if username == "/exit" || username == "/quit" {
			return false
		}
		if username == "" {
			continue
		}

		fmt.Print("Password: ")
		password, err := terminal.ReadPassword()
		if err != nil {
			return false
		}

		a.display.ShowSpinner("Signing in...")
		resp, err := a.client.Login(ctx, username, password)
		a.display.StopSpinner()

		if err != nil {
			a.display.PrintFailure(loginFailureMessage(err, a.cfg.APIBaseURL))
			continue
		}

		if !resp.Success || resp.User == nil {
			msg := resp.Message
			if msg == "" {
				msg = "Login failed. Please try again."
			}
			a.display.PrintFailure(msg)
			continue
		}

		a.store.Login(*resp.User)
		a.display.PrintLoggedIn(*resp.User)
		return true
	}
}

// loginFailureMessage words login transport failures for the user
func loginFailureMessage(err error, endpoint string) string {
	switch api.KindOf(err) {
	case api.KindUnauthorized:
		return "Invalid username or password."
	case api.KindTimeout:
		return "The backend took too long to respond. Check that it is running."
	case api.KindConnectivity:
		return fmt.Sprintf("Cannot reach the RAG backend at %s. Is it running?", endpoint)
	default:
		if detail := api.DetailOf(err); detail != "" {
			return detail
		}
		return "Login failed. Please try again."
	}
}

// runChat is the protected question/answer view. Returns false when the
// user quits, true to hand control back to the gate (logout, expiry).
func (a *app) runChat(ctx context.Context) bool {
	qs := query.NewSession(a.client, a.cfg.APIBaseURL, a.cfg.RequestTimeout)
	poller := health.NewPoller(a.client)
	topK := a.cfg.DefaultTopK

	// One automatic health probe when the view opens; afterwards the
	// panel only refreshes on /health.
	poller.Refresh(ctx)
	a.display.PrintHealth(poller.Last())
	a.display.PrintInfo("Ask a question about ICC policy documents. Type /help for commands.")

	for {
		// Re-evaluate the session before rendering anything protected:
		// an expiry detected by any request must redirect immediately
		if !a.store.Snapshot().Authenticated() {
			a.display.PrintWarning("Your session has expired. Please log in again.")
			return true
		}

		a.display.PrintPrompt(topK, qs.AgentMode())
		input, err := terminal.ReadLine()
		if err != nil {
			return false
		}

		if strings.HasPrefix(input, "/") {
			switch a.handleCommand(ctx, input, qs, poller, &topK) {
			case actionQuit:
				return false
			case actionLeaveView:
				return true
			}
			continue
		}

		a.submitQuestion(ctx, qs, input, topK)
	}
}

// commandAction tells the chat loop what to do after a slash command
type commandAction int

const (
	actionContinue commandAction = iota
	actionLeaveView
	actionQuit
)

// handleCommand dispatches one slash command
func (a *app) handleCommand(ctx context.Context, input string, qs *query.Session, poller *health.Poller, topK *int) commandAction {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/exit", "/quit":
		return actionQuit

	case "/help":
		a.display.PrintHelp()

	case "/health":
		a.display.ShowSpinner("Checking backend health...")
		poller.Refresh(ctx)
		a.display.StopSpinner()
		a.display.PrintHealth(poller.Last())

	case "/logout":
		// Best-effort remote logout; local logout proceeds regardless
		if err := a.client.Logout(ctx); err != nil {
			log.Debug().Err(err).Msg("remote logout failed")
		}
		a.store.Logout()
		a.display.PrintInfo("Logged out.")
		return actionLeaveView

	case "/sources":
		if qs.Status() != query.StatusSucceeded {
			a.display.PrintInfo("No answer yet. Ask a question first.")
			break
		}
		a.display.PrintPassages(qs.Passages(), qs.Disclosure())

	case "/expand", "/collapse":
		a.setDisclosure(qs, arg, cmd == "/expand")

	case "/topk":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 10 {
			a.display.PrintWarning("Usage: /topk N with N between 1 and 10.")
			break
		}
		*topK = n
		a.display.PrintInfo(fmt.Sprintf("Retrieving %d passages per query.", n))

	case "/agent":
		if err := qs.SetAgentMode(a.store.Snapshot().User, !qs.AgentMode()); err != nil {
			a.display.PrintWarning(err.Error())
			break
		}
		if qs.AgentMode() {
			a.display.PrintInfo("AI Agent mode on (display only, queries are unchanged).")
		} else {
			a.display.PrintInfo("AI Agent mode off.")
		}

	default:
		a.display.PrintWarning(fmt.Sprintf("Unknown command %q. Type /help.", cmd))
	}

	return actionContinue
}

// setDisclosure expands or collapses one 1-based passage index
func (a *app) setDisclosure(qs *query.Session, arg string, expand bool) {
	if qs.Status() != query.StatusSucceeded {
		a.display.PrintInfo("No answer yet. Ask a question first.")
		return
	}

	disclosure := qs.Disclosure()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > disclosure.Count() {
		a.display.PrintWarning(fmt.Sprintf("Usage: /expand N or /collapse N with N between 1 and %d.", disclosure.Count()))
		return
	}

	index := n - 1
	if disclosure.Expanded(index) != expand {
		disclosure.Toggle(index)
	}
	a.display.PrintPassages(qs.Passages(), disclosure)
}

// submitQuestion runs one question through the query session and
// renders the outcome
func (a *app) submitQuestion(ctx context.Context, qs *query.Session, input string, topK int) {
	a.display.ShowSpinner("Retrieving passages and generating answer...")
	err := qs.Submit(ctx, input, topK)
	a.display.StopSpinner()

	if errors.Is(err, query.ErrEmptyQuestion) {
		a.display.PrintFailure("Please enter a question.")
		return
	}
	if api.IsUnauthorized(err) {
		// Session reset already happened; the loop top redirects
		return
	}

	switch qs.Status() {
	case query.StatusSucceeded:
		a.display.PrintAnswer(qs.Answer(), qs.AgentMode())
		a.display.PrintPassages(qs.Passages(), qs.Disclosure())
	case query.StatusFailed:
		a.display.PrintFailure(qs.ErrorMessage())
	}
}

// parseFlags overlays command-line flags on the loaded configuration
func parseFlags() *config.Config {
	cfg := config.Load()

	flag.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "RAG backend base URL")
	flag.IntVar(&cfg.DefaultTopK, "top-k", cfg.DefaultTopK, "Passages to retrieve per query (1-10)")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")

	timeoutSeconds := flag.Int("timeout", int(cfg.RequestTimeout/time.Second), "Request timeout in seconds")

	flag.Parse()

	cfg.RequestTimeout = time.Duration(*timeoutSeconds) * time.Second

	return cfg
}

// setupLogging configures the global zerolog logger
func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
