package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/asinbot/internal/config"
	"github.com/nao1215/asinbot/internal/report"
)

const (
	testASIN  = "B0DZGHZQ7V"
	testToken = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw1"
)

const aggregatorPage = `<html><body>
<div class="amzbox" data-id="amazon-de"><span class="offered-price">19,99 €</span></div>
<div class="amzbox" data-id="amazon-jp"></div>
</body></html>`

// newUpstream serves the aggregator, the retail product page and its image.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.Black)
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	imageData := buf.Bytes()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/amazon/"+testASIN+"/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Language") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, aggregatorPage)
	})
	mux.HandleFunc("/de/dp/"+testASIN, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body>
<span id="productTitle">  Test Widget  </span>
<div id="imgTagWrapperId"><img src="%s/img.png"></div>
</body></html>`, server.URL)
	})
	mux.HandleFunc("/img.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(imageData)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeTestConfig(t *testing.T, upstreamURL string) string {
	t.Helper()

	content := fmt.Sprintf(`aggregator_url: %s
retail_url: %s/{domain}
start_delay: 1ms
retry:
  max_attempts: 2
  backoff_base: 1ms
`, upstreamURL, upstreamURL)

	path := filepath.Join(t.TempDir(), "asinbot.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLookupCmd(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t)
	configPath := writeTestConfig(t, upstream.URL)

	t.Run("text output matches the chat reply", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"lookup", "--config", configPath, strings.ToLower(testASIN)})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := out.String()
		wantLines := []string{
			"*Test Widget*",
			"🇩🇪 ALM: 💰 *19,99 €* → Amazon 939 TL [🔗 Bağlantıya git](" + upstream.URL + "/de/dp/" + testASIN + ")",
			report.DefaultSignature,
			"🖼 " + upstream.URL + "/img.png",
		}
		for _, want := range wantLines {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"lookup", "-c", configPath, "--json", testASIN, testASIN})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		dec := json.NewDecoder(&out)
		for i := 0; i < 2; i++ {
			var doc struct {
				Resolution struct {
					ASIN    string `json:"asin"`
					Outcome string `json:"outcome"`
				} `json:"resolution"`
			}
			if err := dec.Decode(&doc); err != nil {
				t.Fatalf("document %d: %v", i, err)
			}
			if doc.Resolution.ASIN != testASIN || doc.Resolution.Outcome != "found" {
				t.Errorf("document %d: unexpected %+v", i, doc.Resolution)
			}
		}
	})

	t.Run("markdown output to file", func(t *testing.T) {
		t.Parallel()

		reportPath := filepath.Join(t.TempDir(), "out", "report.md")
		cmd := NewRootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"lookup", "-c", configPath, "--markdown", "-o", reportPath, testASIN})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), "# Price lookup: "+testASIN) {
			t.Errorf("unexpected markdown:\n%s", content)
		}
	})

	t.Run("invalid ASIN fails before any request", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"lookup", "-c", configPath, "A123"})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for invalid ASIN")
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"lookup", "-c", configPath, "--json", "--markdown", testASIN})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})

	t.Run("missing explicit config", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{"lookup", "-c", filepath.Join(t.TempDir(), "nope.yaml"), testASIN})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

// fakeTelegram is a Bot API double that delivers one message and records replies.
type fakeTelegram struct {
	server *httptest.Server
	texts  chan string
	photos chan string
}

func newFakeTelegram(t *testing.T, chatID int64, text string) *fakeTelegram {
	t.Helper()

	f := &fakeTelegram{
		texts:  make(chan string, 8),
		photos: make(chan string, 8),
	}

	prefix := "/bot" + testToken
	var served atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc(prefix+"/getMe", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"price_bot"}}`)
	})
	mux.HandleFunc(prefix+"/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if served.CompareAndSwap(false, true) {
			fmt.Fprintf(w, `{"ok":true,"result":[{"update_id":100,"message":{"message_id":1,"chat":{"id":%d,"type":"private"},"text":%q}}]}`, chatID, text)
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	})
	mux.HandleFunc(prefix+"/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.texts <- body.Text
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":2,"chat":{"id":1,"type":"private"}}}`)
	})
	mux.HandleFunc(prefix+"/sendPhoto", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.photos <- r.FormValue("caption")
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":3,"chat":{"id":1,"type":"private"}}}`)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func TestRunServe(t *testing.T) {
	t.Parallel()

	upstream := newUpstream(t)
	tg := newFakeTelegram(t, 7, testASIN)

	cfg := config.NewConfig()
	cfg.BotToken = testToken
	cfg.AggregatorURL = upstream.URL
	cfg.RetailURL = upstream.URL + "/{domain}"
	cfg.TelegramAPIURL = tg.server.URL
	cfg.StartDelay = time.Millisecond
	cfg.PollTimeout = time.Second
	cfg.RestartMode = config.RestartModeExit
	cfg.HealthAddr = "127.0.0.1:0"
	if err := cfg.ValidateServe(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &cobra.Command{}
	cmd.SetOut(io.Discard)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cmd, cfg, logger) }()

	select {
	case text := <-tg.texts:
		if text != report.ProgressText {
			t.Errorf("first reply = %q, want progress text", text)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for progress reply")
	}

	select {
	case caption := <-tg.photos:
		if !strings.HasPrefix(caption, "*Test Widget*\n\n") {
			t.Errorf("caption missing title: %q", caption)
		}
		if !strings.Contains(caption, "939 TL") {
			t.Errorf("caption missing converted price: %q", caption)
		}
		if !strings.HasSuffix(caption, report.DefaultSignature) {
			t.Errorf("caption missing signature: %q", caption)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for photo reply")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runServe() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("runServe did not stop")
	}
}

func TestServeCmdRequiresToken(t *testing.T) {
	t.Setenv(config.EnvBotToken, "")

	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "-c", writeTestConfig(t, "http://127.0.0.1:1")})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error without BOT_TOKEN")
	}
	if !strings.Contains(err.Error(), config.ErrMissingBotToken.Error()) {
		t.Errorf("unexpected error: %v", err)
	}
}
