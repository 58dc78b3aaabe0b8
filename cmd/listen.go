package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/lintas/internal/config"
	"github.com/satriahrh/lintas/internal/console"
	"github.com/satriahrh/lintas/internal/controller"
	"github.com/satriahrh/lintas/internal/recognizer"
)

const helpText = `Commands:
  /speak              speak the current translation
  /lang <src> <tgt>   change the language pair, e.g. /lang en fr
  /help               show this help
  /quit               exit
Any other line is treated as recognized speech.`

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run a live translation session against a backend",
	RunE:  runListen,
}

func init() {
	listenCmd.Flags().String("server", "http://localhost:8080", "Backend base URL")
	listenCmd.Flags().String("source", "en", "Source language code")
	listenCmd.Flags().String("target", "fr", "Target language code")
	listenCmd.Flags().String("recognition-language", "en-US", "Language the recognizer listens for")
	listenCmd.Flags().Duration("timeout", 0, "Per-request timeout (0 for the default, negative disables)")
	listenCmd.Flags().String("audio-file", "", "Raw LINEAR16 16kHz audio to stream to the backend recognizer")
	listenCmd.Flags().String("player", "", "Command used to play synthesized audio, e.g. \"mpv --no-video\"")
	listenCmd.Flags().String("audio-dir", "", "Directory for synthesized audio (default: a temp directory)")
	v.BindPFlag("server_url", listenCmd.Flags().Lookup("server"))
	v.BindPFlag("source_lang", listenCmd.Flags().Lookup("source"))
	v.BindPFlag("target_lang", listenCmd.Flags().Lookup("target"))
	v.BindPFlag("recognition_language", listenCmd.Flags().Lookup("recognition-language"))
	v.BindPFlag("request_timeout", listenCmd.Flags().Lookup("timeout"))
	v.BindPFlag("audio_file", listenCmd.Flags().Lookup("audio-file"))
	v.BindPFlag("player", listenCmd.Flags().Lookup("player"))
	v.BindPFlag("audio_dir", listenCmd.Flags().Lookup("audio-dir"))
}

func runListen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display := console.NewDisplay(cmd.OutOrStdout())
	languages := console.NewLanguageSelection(cfg.SourceLang, cfg.TargetLang)

	playback, err := console.NewPlayback(cfg.AudioDir, strings.Fields(cfg.Player), logger)
	if err != nil {
		return fmt.Errorf("init playback: %w", err)
	}
	defer playback.Close()

	client := controller.NewClient(cfg.ServerURL, http.DefaultClient, logger)

	// Typed lines stand in for speech unless an audio file is streamed.
	speechIn, speechOut := io.Pipe()
	var speech io.Writer = speechOut
	var rec controller.Recognizer
	if cfg.AudioFile != "" {
		audio, err := os.Open(cfg.AudioFile)
		if err != nil {
			return fmt.Errorf("open audio file: %w", err)
		}
		defer audio.Close()

		wsURL, err := recognitionURL(cfg.ServerURL)
		if err != nil {
			return err
		}
		wsRec, err := recognizer.NewWebSocketRecognizer(recognizer.WebSocketConfig{
			URL:      wsURL,
			Realtime: true,
		}, audio, logger)
		if err != nil {
			return fmt.Errorf("init recognizer: %w", err)
		}
		rec = wsRec
		speech = io.Discard
	} else {
		rec = recognizer.NewLineRecognizer(speechIn, logger)
	}

	ctrl, err := controller.New(controller.Config{
		RecognitionLanguage: cfg.RecognitionLanguage,
		RequestTimeout:      cfg.RequestTimeout,
	}, rec, display, playback, languages, client, logger)
	if err != nil {
		logger.Error("Failed to create controller", zap.Error(err))
		return err
	}
	defer ctrl.Close()

	if err := ctrl.StartListening(ctx); err != nil {
		return fmt.Errorf("start listening: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), helpText)

	go runSession(ctx, cmd.InOrStdin(), speech, speechOut, ctrl, languages, cmd.OutOrStdout(), logger, stop)

	<-ctx.Done()
	return nil
}

// recognitionURL maps the backend base URL to its recognition socket
func recognitionURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server URL scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/recognize"
	return u.String(), nil
}

type commandKind int

const (
	commandSpeech commandKind = iota
	commandSpeak
	commandLang
	commandHelp
	commandQuit
	commandInvalid
)

type command struct {
	kind commandKind
	args []string
	text string
}

func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{kind: commandSpeech, text: line}
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/speak":
		return command{kind: commandSpeak}
	case "/lang":
		if len(fields) != 3 {
			return command{kind: commandInvalid, text: "usage: /lang <src> <tgt>"}
		}
		return command{kind: commandLang, args: fields[1:]}
	case "/help":
		return command{kind: commandHelp}
	case "/quit", "/exit":
		return command{kind: commandQuit}
	default:
		return command{kind: commandInvalid, text: "unknown command " + fields[0]}
	}
}

// runSession drives the command loop and then ends the session. End of input
// lets the recognition session and in-flight requests finish; /quit stops at
// once and leaves cancellation to Close.
func runSession(ctx context.Context, in io.Reader, speech io.Writer, speechInput io.Closer, ctrl *controller.Controller, languages *console.LanguageSelection, out io.Writer, logger *zap.Logger, stop func()) {
	quit := runCommands(ctx, in, speech, ctrl, languages, out, logger)
	speechInput.Close()
	if !quit {
		ctrl.Drain()
	}
	stop()
}

// runCommands reads stdin until EOF, /quit or ctx is done. It reports whether
// the user asked to quit.
func runCommands(ctx context.Context, in io.Reader, speech io.Writer, ctrl *controller.Controller, languages *console.LanguageSelection, out io.Writer, logger *zap.Logger) bool {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return true
		}

		cmd := parseCommand(scanner.Text())
		switch cmd.kind {
		case commandSpeech:
			if cmd.text == "" {
				continue
			}
			if _, err := fmt.Fprintln(speech, cmd.text); err != nil {
				logger.Warn("Speech input closed", zap.Error(err))
				return false
			}
		case commandSpeak:
			if err := ctrl.Speak(ctx); err != nil && !errors.Is(err, controller.ErrClosed) {
				fmt.Fprintln(out, err)
			}
		case commandLang:
			languages.Set(cmd.args[0], cmd.args[1])
			pair := languages.Languages()
			fmt.Fprintf(out, "Translating %s -> %s\n", pair.Source, pair.Target)
		case commandHelp:
			fmt.Fprintln(out, helpText)
		case commandQuit:
			return true
		case commandInvalid:
			fmt.Fprintln(out, cmd.text)
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Warn("Reading input failed", zap.Error(err))
	}
	return false
}
