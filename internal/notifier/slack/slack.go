package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/quiniela-client/internal/backend"
	"github.com/mauv0809/quiniela-client/internal/metrics"
	"github.com/mauv0809/quiniela-client/internal/notifier"
	"github.com/slack-go/slack"
)

// maxRankingRows is how many leaderboard rows go into a message.
const maxRankingRows = 10

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts event updates to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	dryRun    bool
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, m metrics.Metrics, opts ...slack.Option) *Notifier {
	return &Notifier{
		api:       slack.New(token, opts...),
		channelID: channelID,
		metrics:   m,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific client.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, m metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   m,
	}
}

// DryRun makes the notifier log messages instead of posting them.
func (s *Notifier) DryRun(enabled bool) *Notifier {
	s.dryRun = enabled
	return s
}

func (s *Notifier) ResultsReleased(ctx context.Context, summary notifier.ResultsSummary) error {
	return s.sendMessage(ctx, "results_released", formatResultsReleased(summary))
}

func (s *Notifier) RankingsReleased(ctx context.Context, eventID int, top []backend.RankingEntry) error {
	return s.sendMessage(ctx, "rankings_released", formatRankingsReleased(eventID, top))
}

func (s *Notifier) SubmissionLocked(ctx context.Context, userID string, event backend.Event) error {
	return s.sendMessage(ctx, "submission_locked", formatSubmissionLocked(userID, event))
}

func (s *Notifier) sendMessage(ctx context.Context, kind string, message slack.Message) error {
	if s.dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "kind", kind, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionText(message.Text, false),
	)
	if err != nil {
		s.record(kind, metrics.OutcomeError)
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID, "kind", kind)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.record(kind, metrics.OutcomeOK)
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp, "kind", kind)
	return nil
}

func (s *Notifier) record(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.IncNotification(kind, outcome)
	}
}

func formatResultsReleased(summary notifier.ResultsSummary) slack.Message {
	blocks := make([]slack.Block, 0, 3)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Results are out!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	details := fmt.Sprintf("*%s* scored *%d* points", summary.UserID, summary.TotalPoints)
	if summary.EventName != "" {
		details += fmt.Sprintf(" in %s", summary.EventName)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", details, false, false), nil, nil))

	if summary.Decided > 0 {
		accuracy := fmt.Sprintf("%d of %d decided matches correct (%.0f%%)", summary.Correct, summary.Decided, summary.Accuracy)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", accuracy, false, false)))
	}

	msg := slack.NewBlockMessage(blocks...)
	msg.Text = fmt.Sprintf("Results are out: %s scored %d points", summary.UserID, summary.TotalPoints)
	return msg
}

func formatRankingsReleased(eventID int, top []backend.RankingEntry) slack.Message {
	blocks := make([]slack.Block, 0, 2)

	headerText := slack.NewTextBlockObject("plain_text", "📊 Rankings are live!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var lines []string
	for i, row := range top {
		if i == maxRankingRows {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %d pts", i+1, row.User, row.Points))
	}
	body := "No entries yet."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", body, false, false), nil, nil))

	msg := slack.NewBlockMessage(blocks...)
	msg.Text = fmt.Sprintf("Rankings for event %d are live", eventID)
	return msg
}

func formatSubmissionLocked(userID string, event backend.Event) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", "🔒 Predictions locked in", true, false)
	details := fmt.Sprintf("*%s* submitted predictions for *%s* (%d matches)", userID, eventName(event), event.MatchCount())

	msg := slack.NewBlockMessage(
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", details, false, false), nil, nil),
	)
	msg.Text = fmt.Sprintf("%s locked in predictions for %s", userID, eventName(event))
	return msg
}

func eventName(event backend.Event) string {
	if event.Name != "" {
		return event.Name
	}
	return fmt.Sprintf("event %d", event.ID)
}
