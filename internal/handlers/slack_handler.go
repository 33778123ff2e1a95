package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/diegoclair/slack-qotd-bot/internal/config"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/service"
	"github.com/diegoclair/slack-qotd-bot/internal/latex"
	slackcmd "github.com/diegoclair/slack-qotd-bot/internal/slack"
)

type SlackHandler struct {
	slackClient contract.SlackClient
	services    *service.Instance
	cfg         *config.Config
	log         zerolog.Logger

	// render is swappable in tests; production uses the pdflatex pipeline.
	render func(ctx context.Context, source string) ([]byte, error)
}

func New(slackClient contract.SlackClient, services *service.Instance, cfg *config.Config, log zerolog.Logger) *SlackHandler {
	return &SlackHandler{
		slackClient: slackClient,
		services:    services,
		cfg:         cfg,
		log:         log,
		render:      latex.Render,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	// Verify request from Slack
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	// Verify Slack signature
	verifier, err := slack.NewSecretsVerifier(r.Header, h.cfg.SlackSigningSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// Parse command
	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	response := h.handleCommand(&s)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *SlackHandler) handleCommand(s *slack.SlashCommand) *slack.Msg {
	switch s.Command {
	case "/qotd":
		return h.handleQOTD(s)
	case "/levels":
		return h.handleLevels(s)
	case "/latex":
		return h.handleLatex(s)
	default:
		return ephemeral(fmt.Sprintf("Unknown command: %s", s.Command))
	}
}

func (h *SlackHandler) handleQOTD(s *slack.SlashCommand) *slack.Msg {
	cmd, err := slackcmd.ParseQOTD(s.Text)
	if err != nil {
		return ephemeral(err.Error())
	}

	switch cmd.Type {
	case slackcmd.CmdStatus:
		if !h.cfg.IsAdmin(s.UserID) {
			return ephemeral("Not authorized.")
		}
		return h.handleStatus()
	case slackcmd.CmdPost:
		if !h.cfg.IsAdmin(s.UserID) {
			return ephemeral("Not authorized.")
		}
		return h.handlePostNow()
	default:
		return ephemeral("Usage: `/qotd status` | `/qotd post`")
	}
}

func (h *SlackHandler) handleStatus() *slack.Msg {
	status, err := h.services.Daily.Status()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to get qotd status")
		return ephemeral("Failed to get QOTD status. Check logs for details.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*QOTD Scheduler Status*\n")
	fmt.Fprintf(&b, "Timezone: `%s`\n", status.Timezone)
	fmt.Fprintf(&b, "Local day key: `%s`\n", status.DayKey)
	fmt.Fprintf(&b, "Today's scheduled UTC: `%s`\n", status.PostAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Next scheduled UTC: `%s`\n", status.NextAt.Format("2006-01-02 15:04 MST"))

	if status.Latest != nil {
		fmt.Fprintf(&b, "Last posted: `%s` (message `%s`, thread `%s`, channel `%s`, at `%s`)",
			status.Latest.Date,
			orDash(status.Latest.MessageID),
			orDash(status.Latest.ThreadID),
			status.Latest.ChannelID,
			status.Latest.PostedAt.Format(time.RFC3339),
		)
	} else {
		b.WriteString("Last posted: no QOTD has been recorded yet.")
	}

	return ephemeral(b.String())
}

func (h *SlackHandler) handlePostNow() *slack.Msg {
	err := h.services.Daily.PostNow(context.Background())
	if errors.Is(err, service.ErrAlreadyPosted) {
		return ephemeral("Today's QOTD is already posted.")
	}
	if errors.Is(err, service.ErrNoQuestion) {
		return ephemeral("No question is scheduled for today.")
	}
	if err != nil {
		h.log.Error().Err(err).Msg("manual qotd post failed")
		return ephemeral("Failed to post QOTD. Check logs for details.")
	}

	return ephemeral("Posted today's QOTD.")
}

func (h *SlackHandler) handleLevels(s *slack.SlashCommand) *slack.Msg {
	cmd, err := slackcmd.ParseLevels(s.Text)
	if err != nil {
		return ephemeral(err.Error())
	}

	switch cmd.Type {
	case slackcmd.CmdXP:
		return h.handleXP(s.UserID)
	case slackcmd.CmdTop:
		return h.handleLeaderboard()
	case slackcmd.CmdAddXP:
		if !h.cfg.IsAdmin(s.UserID) {
			return ephemeral("Not authorized.")
		}
		return h.handleAddXP(cmd.Args)
	default:
		return ephemeral("Usage: `/levels xp` | `/levels top` | `/levels add @user <amount>`")
	}
}

func (h *SlackHandler) handleXP(userID string) *slack.Msg {
	xp, err := h.services.XP.XP(userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to get xp")
		return ephemeral("Failed to look up your XP. Check logs for details.")
	}

	return ephemeral(fmt.Sprintf("You have *%d* XP.", xp))
}

func (h *SlackHandler) handleLeaderboard() *slack.Msg {
	top, err := h.services.XP.Leaderboard(10)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to get leaderboard")
		return ephemeral("Failed to get the leaderboard. Check logs for details.")
	}

	if len(top) == 0 {
		return ephemeral("No XP has been earned yet.")
	}

	var b strings.Builder
	b.WriteString("*XP Leaderboard*\n")
	for i, user := range top {
		fmt.Fprintf(&b, "%d. <@%s> — %d XP\n", i+1, user.UserID, user.XP)
	}

	return inChannel(b.String())
}

func (h *SlackHandler) handleAddXP(args []string) *slack.Msg {
	if len(args) != 2 {
		return ephemeral("Usage: `/levels add @user <amount>`")
	}

	userID, err := slackcmd.ParseUserMention(args[0])
	if err != nil {
		return ephemeral("First argument must be a user mention.")
	}

	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return ephemeral("Amount must be an integer.")
	}

	total, err := h.services.XP.Grant(context.Background(), userID, delta)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to grant xp")
		return ephemeral("Failed to grant XP. Check logs for details.")
	}

	return ephemeral(fmt.Sprintf("Adjusted <@%s> by %+d XP (new total: %d).", userID, delta, total))
}

func (h *SlackHandler) handleLatex(s *slack.SlashCommand) *slack.Msg {
	source := strings.TrimSpace(s.Text)
	if source == "" {
		return ephemeral("Usage: `/latex <code>`")
	}

	// Rendering takes longer than Slack's response window, so finish async.
	channelID, userID := s.ChannelID, s.UserID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		png, err := h.render(ctx, source)
		if err != nil {
			h.log.Error().Err(err).Str("user_id", userID).Msg("latex render failed")
			return
		}

		_, err = h.slackClient.UploadFileV2(slack.UploadFileV2Parameters{
			Channel:  channelID,
			Filename: "latex.png",
			FileSize: len(png),
			Reader:   bytes.NewReader(png),
			Title:    fmt.Sprintf("LaTeX for <@%s>", userID),
		})
		if err != nil {
			h.log.Error().Err(err).Str("channel_id", channelID).Msg("latex upload failed")
		}
	}()

	return ephemeral("Rendering LaTeX...")
}

func ephemeral(text string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}

func inChannel(text string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         text,
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
