package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/ffstats/internal/analysis"
)

// Reports renders the league reports sent to the chat.
type Reports interface {
	Standings(ctx context.Context, policy string) (string, error)
	WeekScores(ctx context.Context, week int) (string, error)
	Efficiency(ctx context.Context) (string, error)
	ProjectionBias(ctx context.Context, position string) (string, error)
	Refresh(ctx context.Context) (string, error)
}

const helpText = "Available commands:\n" +
	"/standings [projected|actual|best] - League standings under a scoring policy\n" +
	"/scores <week> - Actual, projected and best possible scores for a week\n" +
	"/efficiency - How many possible points each manager started\n" +
	"/bias [position] - ESPN projection bias with a bootstrap confidence interval\n" +
	"/refresh - Scrape the league again"

type Handler struct {
	reports Reports
}

func NewHandler(reports Reports) *Handler {
	return &Handler{reports: reports}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to ffstats! Use /help to see available commands."
	case "help":
		msg.Text = helpText
	case "standings":
		h.handleStandings(ctx, &msg, args)
	case "scores":
		h.handleScores(ctx, &msg, args)
	case "efficiency":
		h.handleEfficiency(ctx, &msg)
	case "bias":
		h.handleBias(ctx, &msg, args)
	case "refresh":
		h.handleRefresh(ctx, &msg)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleStandings(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	policy := strings.ToLower(args)
	if policy == "" {
		policy = analysis.Actual.Name
	}
	standings, err := h.reports.Standings(ctx, policy)
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching standings: %v", err)
	} else {
		msg.Text = standings
	}
}

func (h *Handler) handleScores(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	week, err := strconv.Atoi(args)
	if err != nil || week < 1 {
		msg.Text = "Please provide a week number. Usage: /scores <week>"
		return
	}
	scores, err := h.reports.WeekScores(ctx, week)
	if err != nil {
		msg.Text = fmt.Sprintf("Error fetching scores: %v", err)
	} else {
		msg.Text = scores
	}
}

func (h *Handler) handleEfficiency(ctx context.Context, msg *tgbotapi.MessageConfig) {
	report, err := h.reports.Efficiency(ctx)
	if err != nil {
		msg.Text = fmt.Sprintf("Error computing efficiency: %v", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleBias(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	report, err := h.reports.ProjectionBias(ctx, args)
	if err != nil {
		msg.Text = fmt.Sprintf("Error computing projection bias: %v", err)
	} else {
		msg.Text = report
	}
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.MessageConfig) {
	report, err := h.reports.Refresh(ctx)
	if err != nil {
		msg.Text = fmt.Sprintf("Error refreshing league: %v", err)
	} else {
		msg.Text = report
	}
}
