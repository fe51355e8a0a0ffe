package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cjrutherford/tanuki-orchestrator/internal/config"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/chat"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/persona"
	"github.com/cjrutherford/tanuki-orchestrator/internal/model/profile"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/collector"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/gateway"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/prompt"
	"github.com/cjrutherford/tanuki-orchestrator/internal/service/summary"
)

// Notifier receives every message the orchestrator successfully publishes.
type Notifier interface {
	MessagePublished(msg chat.Message)
}

// Orchestrator sequences the welcome and conversation-advance workflows
// across the directory, gateway, and collector collaborators.
type Orchestrator struct {
	personas   persona.Directory
	profiles   profile.Directory
	builder    *prompt.Builder
	gateway    gateway.Client
	summarizer *summary.Summarizer
	collector  collector.Client
	notifier   Notifier
	cfg        config.OrchestrationConfig
}

// New wires an orchestrator. notifier may be nil.
func New(
	personas persona.Directory,
	profiles profile.Directory,
	builder *prompt.Builder,
	gw gateway.Client,
	summarizer *summary.Summarizer,
	coll collector.Client,
	notifier Notifier,
	cfg config.OrchestrationConfig,
) *Orchestrator {
	return &Orchestrator{
		personas:   personas,
		profiles:   profiles,
		builder:    builder,
		gateway:    gw,
		summarizer: summarizer,
		collector:  coll,
		notifier:   notifier,
		cfg:        cfg,
	}
}

// ProfileWelcome greets a newly created profile with a generated welcome
// message from the onboarding persona. Nothing is published until every
// prior step has succeeded.
func (o *Orchestrator) ProfileWelcome(ctx context.Context, profileID string) error {
	if strings.TrimSpace(profileID) == "" {
		return fmt.Errorf("%w: profile id is required", ErrValidation)
	}

	onboarding, err := o.personas.Find(ctx, persona.Query{Name: o.cfg.OnboardingPersona})
	if err != nil {
		log.Printf("[orchestrator] welcome: resolve onboarding persona %q failed: %v", o.cfg.OnboardingPersona, err)
		return wrapPersonaErr(err, o.cfg.OnboardingPersona)
	}

	prof, err := o.profiles.Get(ctx, profileID)
	if err != nil {
		log.Printf("[orchestrator] welcome: resolve profile %q failed: %v", profileID, err)
		return wrapProfileErr(err, profileID)
	}

	system := o.builder.SystemMessage(onboarding)
	req := o.builder.Welcome(system, prof.ProfileName)

	resp, err := o.gateway.Generate(ctx, req)
	if err != nil {
		log.Printf("[orchestrator] welcome: generation failed for profile %q: %v", profileID, err)
		return wrapGatewayErr(err)
	}

	content, sidePayload := splitSidePayload(resp.Content)
	logSidePayload(profileID, sidePayload)

	msg := chat.Message{
		ID:             uuid.NewString(),
		SenderID:       onboarding.ID,
		SenderName:     onboarding.Name,
		RecipientIDs:   []string{prof.ID},
		RecipientNames: []string{prof.ProfileName},
		Content:        content,
		Timestamp:      time.Now().UTC(),
		Type:           chat.TypeChat,
	}

	if err := o.collector.Post(ctx, msg); err != nil {
		log.Printf("[orchestrator] welcome: publish failed for profile %q: %v", profileID, err)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	o.notify(msg)
	log.Printf("[orchestrator] welcome published for profile=%s persona=%s", profileID, onboarding.ID)
	return nil
}

// personaOutcome tags one persona's fan-out result.
type personaOutcome struct {
	message chat.Message
	err     error
}

// ConversationAdvance generates one response per assigned persona and
// publishes them in persona order. The per-persona chains run on a bounded
// worker pool; a failed chain is captured per persona, not propagated into
// its siblings.
func (o *Orchestrator) ConversationAdvance(ctx context.Context, conv chat.Conversation, personas []persona.Persona) ([]chat.Message, error) {
	if strings.TrimSpace(conv.ID) == "" {
		return nil, fmt.Errorf("%w: conversation id is required", ErrValidation)
	}

	last, ok := conv.LastMessage()
	if !ok {
		return nil, fmt.Errorf("%w: conversation %q has no messages", ErrValidation, conv.ID)
	}

	if len(personas) == 0 {
		return []chat.Message{}, nil
	}

	prof, err := o.profiles.Get(ctx, last.SenderID)
	if err != nil {
		log.Printf("[orchestrator] advance: resolve sender profile %q failed: %v", last.SenderID, err)
		return nil, wrapProfileErr(err, last.SenderID)
	}

	outcomes := make([]personaOutcome, len(personas))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.FanoutWorkers)
	for i, p := range personas {
		i, p := i, p
		g.Go(func() error {
			outcomes[i] = o.runPersonaChain(groupCtx, conv, p, prof, last)
			// Chain failures are tagged per persona; only a dead context
			// stops the remaining work.
			return groupCtx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: fan-out interrupted: %v", ErrOrchestration, err)
	}

	if !o.cfg.FanoutPartial {
		for i, outcome := range outcomes {
			if outcome.err != nil {
				log.Printf("[orchestrator] advance: persona %s failed, aborting run: %v", personas[i].ID, outcome.err)
				return nil, outcome.err
			}
		}
	}

	published := make([]chat.Message, 0, len(outcomes))
	var firstFailure error
	for i, outcome := range outcomes {
		if outcome.err != nil {
			if firstFailure == nil {
				firstFailure = outcome.err
			}
			log.Printf("[orchestrator] advance: skipping failed persona %s: %v", personas[i].ID, outcome.err)
			continue
		}

		if err := o.collector.Post(ctx, outcome.message); err != nil {
			// Earlier publishes in this run are not retracted.
			log.Printf("[orchestrator] advance: publish failed for persona %s: %v", personas[i].ID, err)
			return published, fmt.Errorf("%w: persona %s: %v", ErrPublish, personas[i].ID, err)
		}
		o.notify(outcome.message)
		published = append(published, outcome.message)
	}

	if len(published) == 0 && firstFailure != nil {
		return nil, firstFailure
	}

	log.Printf("[orchestrator] advance published %d/%d responses for conversation=%s", len(published), len(personas), conv.ID)
	return published, nil
}

// runPersonaChain executes one persona's summarize -> prompt -> generate
// sequence and wraps any failure into a typed error.
func (o *Orchestrator) runPersonaChain(ctx context.Context, conv chat.Conversation, p persona.Persona, prof profile.Profile, last chat.Message) personaOutcome {
	system := o.builder.SystemMessage(p)

	summarized, err := o.summarizer.Summarize(ctx, conv.Messages, system)
	if err != nil {
		return personaOutcome{err: wrapGatewayErr(fmt.Errorf("persona %s: %w", p.ID, err))}
	}

	req := o.builder.Response(system, summarized, last.Content)
	resp, err := o.gateway.Generate(ctx, req)
	if err != nil {
		return personaOutcome{err: wrapGatewayErr(fmt.Errorf("persona %s: %w", p.ID, err))}
	}

	return personaOutcome{message: chat.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		SenderID:       p.ID,
		SenderName:     p.Name,
		RecipientIDs:   []string{prof.ID},
		RecipientNames: []string{prof.ProfileName},
		Content:        resp.Content,
		Timestamp:      time.Now().UTC(),
		Type:           chat.TypeChat,
	}}
}

func (o *Orchestrator) notify(msg chat.Message) {
	if o.notifier != nil {
		o.notifier.MessagePublished(msg)
	}
}

// splitSidePayload separates the human-facing message from the structured
// block after the first delimiter. A missing delimiter is tolerated: the
// whole response is the message and the payload is empty.
func splitSidePayload(raw string) (message, payload string) {
	parts := strings.SplitN(raw, prompt.SidePayloadDelimiter, 2)
	message = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		payload = strings.TrimSpace(parts[1])
	}
	return message, payload
}

func logSidePayload(profileID, payload string) {
	switch {
	case payload == "":
		log.Printf("[orchestrator] welcome: no side payload for profile=%s", profileID)
	case json.Valid([]byte(payload)):
		log.Printf("[orchestrator] welcome: side payload for profile=%s: %s", profileID, payload)
	default:
		log.Printf("[orchestrator] welcome: discarding malformed side payload for profile=%s", profileID)
	}
}

func wrapPersonaErr(err error, name string) error {
	if errors.Is(err, persona.ErrNotFound) || errors.Is(err, persona.ErrAmbiguous) {
		return fmt.Errorf("%w: %q: %v", ErrPersonaNotFound, name, err)
	}
	return fmt.Errorf("%w: resolving persona %q: %v", ErrOrchestration, name, err)
}

func wrapProfileErr(err error, id string) error {
	if errors.Is(err, profile.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, id)
	}
	return fmt.Errorf("%w: resolving profile %q: %v", ErrOrchestration, id, err)
}

func wrapGatewayErr(err error) error {
	if errors.Is(err, gateway.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrGateway, err)
}
