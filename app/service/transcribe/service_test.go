package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	configSent bool
	closed     bool
	sent       bytes.Buffer
	events     [][]string
	recvErr    error
}

func (f *fakeStream) SendConfig() error {
	f.configSent = true
	return nil
}

func (f *fakeStream) Send(content []byte) error {
	if !f.configSent {
		return errors.New("config must be sent first")
	}
	f.sent.Write(content)
	return nil
}

func (f *fakeStream) CloseSend() error {
	f.closed = true
	return nil
}

func (f *fakeStream) Recv() ([]string, error) {
	if len(f.events) == 0 {
		if f.recvErr != nil {
			return nil, f.recvErr
		}
		return nil, fmt.Errorf("failed to receive stt: %w", io.EOF)
	}

	event := f.events[0]
	f.events = f.events[1:]

	return event, nil
}

func TestStreamAudio(t *testing.T) {
	stream := &fakeStream{}
	audio := bytes.Repeat([]byte{1, 2, 3, 4}, bufferSize)

	require.NoError(t, streamAudio(context.Background(), bytes.NewReader(audio), stream))

	assert.True(t, stream.configSent)
	assert.True(t, stream.closed)
	assert.Equal(t, audio, stream.sent.Bytes())
}

func TestStreamAudio_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := streamAudio(ctx, bytes.NewReader([]byte{1}), &fakeStream{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReceiveTexts(t *testing.T) {
	stream := &fakeStream{
		events: [][]string{
			nil,
			{"عايز", "عايزة"},
			{},
			{"شوربة عدس"},
		},
	}

	texts, err := receiveTexts(context.Background(), stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"عايز", "شوربة عدس"}, texts)
}

func TestReceiveTexts_Error(t *testing.T) {
	stream := &fakeStream{
		events:  [][]string{{"أهلا"}},
		recvErr: errors.New("unavailable"),
	}

	texts, err := receiveTexts(context.Background(), stream)
	assert.Error(t, err)
	assert.Equal(t, []string{"أهلا"}, texts)
}

type fakeFiles struct {
	enabled bool
	text    string
	err     error

	filename string
	audio    string
}

func (f *fakeFiles) Enabled() bool {
	return f.enabled
}

func (f *fakeFiles) Transcribe(_ context.Context, filename string, audio io.Reader) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}

	f.filename = filename
	f.audio = string(data)

	return f.text, f.err
}

func TestTranscribe_Files(t *testing.T) {
	files := &fakeFiles{enabled: true, text: "عايزة وصفة ملوخية"}
	svc := NewService(files, nil)

	require.True(t, svc.Enabled())

	text, err := svc.Transcribe(context.Background(), "voice.ogg", bytes.NewReader([]byte("opus")))
	require.NoError(t, err)

	assert.Equal(t, "عايزة وصفة ملوخية", text)
	assert.Equal(t, "voice.ogg", files.filename)
	assert.Equal(t, "opus", files.audio)
}

func TestTranscribe_FilesError(t *testing.T) {
	svc := NewService(&fakeFiles{enabled: true, err: errors.New("rate limited")}, nil)

	_, err := svc.Transcribe(context.Background(), "voice.ogg", bytes.NewReader(nil))
	assert.ErrorContains(t, err, "rate limited")
}

func TestTranscribe_Disabled(t *testing.T) {
	svc := NewService(&fakeFiles{}, nil)

	assert.False(t, svc.Enabled())

	_, err := svc.Transcribe(context.Background(), "voice.ogg", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrDisabled)
}
