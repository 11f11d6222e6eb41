package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"recipechat/app/client/speechkit"
	"recipechat/app/client/whisper"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	bufferSize    = 4096
	maxTranscribe = 2 * time.Minute
)

// ErrDisabled is returned when speech recognition is not configured.
var ErrDisabled = speechkit.ErrSpeechDisabled

type recognitionStream interface {
	SendConfig() error
	Send(content []byte) error
	CloseSend() error
	Recv() ([]string, error)
}

// fileRecognizer transcribes a whole uploaded file in one request.
type fileRecognizer interface {
	Enabled() bool
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

type Service struct {
	files        fileRecognizer
	speechClient *speechkit.YandexSpeechKit
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*whisper.Client](di),
		do.MustInvoke[*speechkit.YandexSpeechKit](di),
	), nil
}

func NewService(files fileRecognizer, speechClient *speechkit.YandexSpeechKit) *Service {
	return &Service{
		files:        files,
		speechClient: speechClient,
	}
}

func (s *Service) Enabled() bool {
	return s.filesEnabled() || s.streamEnabled()
}

func (s *Service) filesEnabled() bool {
	return s.files != nil && s.files.Enabled()
}

func (s *Service) streamEnabled() bool {
	return s.speechClient != nil && s.speechClient.Enabled()
}

// Transcribe converts an uploaded audio file to text. The whisper endpoint
// is used when configured, otherwise the audio is streamed to SpeechKit.
func (s *Service) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxTranscribe)
	defer cancel()

	var (
		text    string
		err     error
		backend string
	)

	switch {
	case s.filesEnabled():
		backend = "whisper"
		text, err = s.files.Transcribe(ctx, filename, audio)
	case s.streamEnabled():
		backend = "speechkit"
		text, err = s.transcribeStream(ctx, audio)
	default:
		return "", ErrDisabled
	}

	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	slog.Info("Transcribed audio", "backend", backend, "length", len([]rune(text)))

	return text, nil
}

// transcribeStream transcodes the upload with ffmpeg and streams it to
// SpeechKit. Final utterances are joined with a space in the order they
// were recognized.
func (s *Service) transcribeStream(ctx context.Context, audio io.Reader) (string, error) {
	g, gCtx := errgroup.WithContext(ctx)

	ffmpeg, err := NewFFmpegStream(gCtx)
	if err != nil {
		return "", fmt.Errorf("failed to create ffmpeg stream: %w", err)
	}

	if err = ffmpeg.Start(); err != nil {
		return "", err
	}
	defer ffmpeg.Stop()

	handle, err := s.speechClient.Start(gCtx)
	if err != nil {
		return "", fmt.Errorf("failed to start transcription: %w", err)
	}
	defer handle.Close()

	var texts []string

	g.Go(func() error {
		return ffmpeg.Feed(audio)
	})

	g.Go(func() error {
		if err := streamAudio(gCtx, ffmpeg.GetAudioStream(), handle); err != nil {
			return err
		}
		return ffmpeg.Wait()
	})

	g.Go(func() error {
		result, err := receiveTexts(gCtx, handle)
		texts = result
		return err
	})

	if err = g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(texts, " "), nil
}

func streamAudio(ctx context.Context, audioSrc io.Reader, stream recognitionStream) error {
	if err := stream.SendConfig(); err != nil {
		return fmt.Errorf("failed to send audio config: %w", err)
	}

	buffer := make([]byte, bufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := audioSrc.Read(buffer)
		if n > 0 {
			if sendErr := stream.Send(buffer[:n]); sendErr != nil {
				return fmt.Errorf("failed to send audio: %w", sendErr)
			}
		}

		if errors.Is(err, io.EOF) {
			return stream.CloseSend()
		}
		if err != nil {
			return fmt.Errorf("failed to read audio: %w", err)
		}
	}
}

// receiveTexts keeps the best alternative of every final event until the
// recognizer closes the stream.
func receiveTexts(ctx context.Context, stream recognitionStream) ([]string, error) {
	var result []string

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		alternatives, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, err
		}

		if len(alternatives) > 0 {
			result = append(result, alternatives[0])
		}
	}
}
