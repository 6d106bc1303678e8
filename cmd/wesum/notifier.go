// cmd/wesum/notifier.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Notifier delivers the composed digest. The primary sink is a
// ServerChan-style push endpoint; an archive endpoint and a Discord channel
// mirror are optional. There are no retries: the caller decides, based on
// the boolean result, whether the seen store may be persisted.
type Notifier struct {
	cfg     *Config
	client  *http.Client
	discord *discordgo.Session
}

// NewNotifier wires the delivery sinks from config. The Discord session is
// REST-only; no gateway connection is opened.
func NewNotifier(cfg *Config) *Notifier {
	n := &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: RequestTimeout},
	}
	if cfg.Discord.BotToken != "" && cfg.Discord.ChannelID != "" {
		session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
		if err != nil {
			Log().Warnf("discord mirror disabled: %v", err)
		} else {
			n.discord = session
		}
	}
	return n
}

// Deliver sends the digest: archive the full document when an archive
// endpoint is configured, push the short card (or the full body when
// archiving is unavailable), then mirror to Discord best-effort. Only the
// push result decides success.
func (n *Notifier) Deliver(ctx context.Context, d Digest) bool {
	body := d.Body
	if n.cfg.Archive.Endpoint != "" {
		if archiveURL := n.archive(ctx, d); archiveURL != "" {
			body = ComposeCard(d, archiveURL)
		}
	}

	ok := n.Push(ctx, d.Title, body)

	if n.discord != nil {
		if err := n.mirrorDiscord(d); err != nil {
			Log().Warnf("discord mirror failed: %v", err)
		}
	}
	return ok
}

// Push POSTs a title and markdown body to the push endpoint. Success
// requires both HTTP 200 and an embedded code of 0: the provider answers
// 200 even for rejected messages.
func (n *Notifier) Push(ctx context.Context, title, content string) bool {
	form := url.Values{}
	form.Set("title", title)
	form.Set("desp", content)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.PushURL(),
		strings.NewReader(form.Encode()))
	if err != nil {
		Log().Errorf("push request build failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		Log().Errorf("push error: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		Log().Errorf("push HTTP error: %d", resp.StatusCode)
		return false
	}

	var result struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		Log().Errorf("push response unreadable: %v", err)
		return false
	}
	if result.Code != 0 {
		Log().Errorf("push rejected: code=%d message=%s", result.Code, result.Message)
		return false
	}

	Log().Infof("push success: %s", title)
	return true
}

// archive POSTs the full digest to the paste endpoint and returns the
// public URL, or "" on any failure (the caller then sends the full body
// directly).
func (n *Notifier) archive(ctx context.Context, d Digest) string {
	payload, err := json.Marshal(map[string]string{
		"title":   d.Title,
		"content": d.Body,
	})
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Archive.Endpoint,
		bytes.NewReader(payload))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		Log().Warnf("archive error: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		Log().Warnf("archive HTTP error: %d", resp.StatusCode)
		return ""
	}
	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		Log().Warnf("archive response unreadable: %v", err)
		return ""
	}
	return result.URL
}

// mirrorDiscord posts the digest to the configured channel, chunked under
// the Discord message ceiling.
func (n *Notifier) mirrorDiscord(d Digest) error {
	for _, chunk := range chunkMessage(fmt.Sprintf("# %s\n%s", d.Title, d.Body), DiscordChunkLimit) {
		if _, err := n.discord.ChannelMessageSend(n.cfg.Discord.ChannelID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// chunkMessage splits text into pieces of at most limit runes, breaking on
// line boundaries where possible.
func chunkMessage(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		// A single oversized line is hard-cut.
		for len([]rune(line)) > limit {
			runes := []rune(line)
			chunks = appendChunk(chunks, &current)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
		}
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(line))+1 > limit {
			chunks = appendChunk(chunks, &current)
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	return appendChunk(chunks, &current)
}

func appendChunk(chunks []string, current *strings.Builder) []string {
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
		current.Reset()
	}
	return chunks
}
