package common

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ErrAwaitTimeout reports that a prompt or claim window elapsed without a
// qualifying response. Callers treat it as a neutral cancellation.
var ErrAwaitTimeout = errors.New("response window elapsed")

// Exit words cancel a pending confirmation outright.
var exitWords = map[string]bool{
	"exit":   true,
	"quit":   true,
	"cancel": true,
}

const confirmRetries = 3

type messageWaiter struct {
	match func(m *discordgo.MessageCreate) bool
	ch    chan *discordgo.MessageCreate
}

type reactionWaiter struct {
	emoji string
	ch    chan *discordgo.MessageReactionAdd
}

// Awaiter bridges discordgo gateway events into bounded channel waits so
// interactive flows can suspend on the next message or reaction. No database
// transaction is ever held open across a wait; workflows re-validate after
// resuming.
type Awaiter struct {
	mu              sync.Mutex
	messageWaiters  map[string][]*messageWaiter  // keyed by channel ID
	reactionWaiters map[string][]*reactionWaiter // keyed by message ID
}

// NewAwaiter creates a new response waiter registry
func NewAwaiter() *Awaiter {
	return &Awaiter{
		messageWaiters:  make(map[string][]*messageWaiter),
		reactionWaiters: make(map[string][]*reactionWaiter),
	}
}

// HandleMessageCreate feeds gateway messages to pending waiters. Register it
// as a discordgo handler once at session setup.
func (a *Awaiter) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	waiters := a.messageWaiters[m.ChannelID]
	if len(waiters) == 0 {
		return
	}

	var remaining []*messageWaiter
	for _, w := range waiters {
		if w.match(m) {
			w.ch <- m
		} else {
			remaining = append(remaining, w)
		}
	}

	if len(remaining) == 0 {
		delete(a.messageWaiters, m.ChannelID)
	} else {
		a.messageWaiters[m.ChannelID] = remaining
	}
}

// HandleReactionAdd feeds gateway reactions to pending waiters. Register it
// as a discordgo handler once at session setup.
func (a *Awaiter) HandleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == s.State.User.ID {
		return
	}
	// Bots never qualify as responders; a claim window stays open for the
	// first human reaction.
	if r.Member != nil && r.Member.User != nil && r.Member.User.Bot {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	waiters := a.reactionWaiters[r.MessageID]
	if len(waiters) == 0 {
		return
	}

	var remaining []*reactionWaiter
	for _, w := range waiters {
		if w.emoji == "" || w.emoji == r.Emoji.Name {
			w.ch <- r
		} else {
			remaining = append(remaining, w)
		}
	}

	if len(remaining) == 0 {
		delete(a.reactionWaiters, r.MessageID)
	} else {
		a.reactionWaiters[r.MessageID] = remaining
	}
}

// AwaitChannelMessage suspends until a message matching the predicate arrives
// in the channel, or the timeout elapses
func (a *Awaiter) AwaitChannelMessage(channelID string, match func(m *discordgo.MessageCreate) bool, timeout time.Duration) (*discordgo.MessageCreate, error) {
	w := &messageWaiter{
		match: match,
		ch:    make(chan *discordgo.MessageCreate, 1),
	}

	a.mu.Lock()
	a.messageWaiters[channelID] = append(a.messageWaiters[channelID], w)
	a.mu.Unlock()

	select {
	case m := <-w.ch:
		return m, nil
	case <-time.After(timeout):
		a.removeMessageWaiter(channelID, w)
		return nil, ErrAwaitTimeout
	}
}

// AwaitMessage suspends until the expected responder posts in the channel
func (a *Awaiter) AwaitMessage(channelID, userID string, timeout time.Duration) (string, error) {
	m, err := a.AwaitChannelMessage(channelID, func(m *discordgo.MessageCreate) bool {
		return m.Author.ID == userID
	}, timeout)
	if err != nil {
		return "", err
	}
	return m.Content, nil
}

// AwaitReaction suspends until anyone reacts to the message with the given
// emoji, returning the reacting user's ID. An empty emoji accepts any reaction.
func (a *Awaiter) AwaitReaction(messageID, emoji string, timeout time.Duration) (string, error) {
	w := &reactionWaiter{
		emoji: emoji,
		ch:    make(chan *discordgo.MessageReactionAdd, 1),
	}

	a.mu.Lock()
	a.reactionWaiters[messageID] = append(a.reactionWaiters[messageID], w)
	a.mu.Unlock()

	select {
	case r := <-w.ch:
		return r.UserID, nil
	case <-time.After(timeout):
		a.removeReactionWaiter(messageID, w)
		return "", ErrAwaitTimeout
	}
}

// AwaitConfirm suspends until the expected responder answers yes or no.
// Unrecognized input re-prompts up to the retry budget before being treated
// as a cancellation; exit words cancel immediately. Timeout surfaces as
// ErrAwaitTimeout.
func (a *Awaiter) AwaitConfirm(s *discordgo.Session, channelID, userID string, timeout time.Duration) (bool, error) {
	for attempt := 0; attempt < confirmRetries; attempt++ {
		content, err := a.AwaitMessage(channelID, userID, timeout)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(content)) {
		case "yes", "y", "confirm":
			return true, nil
		case "no", "n":
			return false, nil
		default:
			if exitWords[strings.ToLower(strings.TrimSpace(content))] {
				return false, nil
			}
			if attempt < confirmRetries-1 {
				if _, err := s.ChannelMessageSend(channelID, "Please reply `yes` or `no` (or `exit` to cancel)."); err != nil {
					log.Errorf("Error sending confirmation re-prompt: %v", err)
				}
			}
		}
	}
	return false, nil
}

func (a *Awaiter) removeMessageWaiter(channelID string, target *messageWaiter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var remaining []*messageWaiter
	for _, w := range a.messageWaiters[channelID] {
		if w != target {
			remaining = append(remaining, w)
		}
	}
	if len(remaining) == 0 {
		delete(a.messageWaiters, channelID)
	} else {
		a.messageWaiters[channelID] = remaining
	}
}

func (a *Awaiter) removeReactionWaiter(messageID string, target *reactionWaiter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var remaining []*reactionWaiter
	for _, w := range a.reactionWaiters[messageID] {
		if w != target {
			remaining = append(remaining, w)
		}
	}
	if len(remaining) == 0 {
		delete(a.reactionWaiters, messageID)
	} else {
		a.reactionWaiters[messageID] = remaining
	}
}
