package control

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/infra/telegram"
	"github.com/vietddude/nodewatch/internal/monitoring/schedule"
)

type stubReporter struct {
	subscribed map[domain.SubscriberID]bool
	onDemand   []domain.SubscriberID
	subErr     error
}

func (s *stubReporter) OnDemand(ctx context.Context, id domain.SubscriberID) error {
	s.onDemand = append(s.onDemand, id)
	return nil
}

func (s *stubReporter) Subscribe(id domain.SubscriberID) (schedule.SubscribeResult, error) {
	if s.subErr != nil {
		return 0, s.subErr
	}
	if s.subscribed[id] {
		return schedule.AlreadyActive, nil
	}
	s.subscribed[id] = true
	return schedule.Started, nil
}

func (s *stubReporter) Interval() time.Duration { return 5 * time.Minute }

type reply struct {
	dest   domain.SubscriberID
	text   string
	format domain.Format
}

type stubNotifier struct {
	mu      sync.Mutex
	replies []reply
}

func (n *stubNotifier) Send(ctx context.Context, dest domain.SubscriberID, text string, format domain.Format) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replies = append(n.replies, reply{dest, text, format})
	return nil
}

func telegramCommand(name string, chat domain.SubscriberID) telegram.Command {
	return telegram.Command{Name: name, Chat: chat}
}

func newCommands() (*Commands, *stubReporter, *stubNotifier) {
	reporter := &stubReporter{subscribed: map[domain.SubscriberID]bool{}}
	notifier := &stubNotifier{}
	return NewCommands(reporter, notifier), reporter, notifier
}

func TestCommands_AutoReport(t *testing.T) {
	cmds, reporter, notifier := newCommands()
	ctx := context.Background()

	cmds.HandleCommand(ctx, telegram.Command{Name: telegram.CommandAutoReport, Chat: "42"})
	cmds.HandleCommand(ctx, telegram.Command{Name: telegram.CommandAutoReport, Chat: "42"})

	if !reporter.subscribed["42"] {
		t.Fatal("expected chat 42 to be subscribed")
	}
	if len(notifier.replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(notifier.replies))
	}
	if notifier.replies[0].text != MsgAutoReportStarted {
		t.Errorf("unexpected first reply: %q", notifier.replies[0].text)
	}
	if notifier.replies[1].text != MsgAlreadySubscribed {
		t.Errorf("unexpected second reply: %q", notifier.replies[1].text)
	}
}

func TestCommands_AutoReportError(t *testing.T) {
	cmds, reporter, notifier := newCommands()
	reporter.subErr = errors.New("stopped")

	cmds.HandleCommand(context.Background(), telegram.Command{Name: telegram.CommandAutoReport, Chat: "42"})

	if len(notifier.replies) != 1 || notifier.replies[0].text != MsgAutoReportFailed {
		t.Errorf("unexpected replies: %+v", notifier.replies)
	}
}

func TestCommands_Status(t *testing.T) {
	cmds, reporter, notifier := newCommands()

	cmds.HandleCommand(context.Background(), telegram.Command{Name: telegram.CommandStatus, Chat: "-100"})

	if len(reporter.onDemand) != 1 || reporter.onDemand[0] != "-100" {
		t.Errorf("expected on-demand report for -100, got %v", reporter.onDemand)
	}
	if len(notifier.replies) != 0 {
		t.Errorf("status delivers through the reporter, got extra replies %+v", notifier.replies)
	}
}

func TestCommands_Usage(t *testing.T) {
	for _, name := range []string{telegram.CommandStart, telegram.CommandHelp} {
		cmds, _, notifier := newCommands()

		cmds.HandleCommand(context.Background(), telegram.Command{Name: name, Chat: "7"})

		if len(notifier.replies) != 1 {
			t.Fatalf("%s: expected 1 reply, got %d", name, len(notifier.replies))
		}
		r := notifier.replies[0]
		if r.dest != "7" || r.format != domain.FormatPlain {
			t.Errorf("%s: unexpected reply %+v", name, r)
		}
		if !strings.Contains(r.text, "/status") || !strings.Contains(r.text, "every 300s") {
			t.Errorf("%s: unexpected usage text %q", name, r.text)
		}
	}
}
