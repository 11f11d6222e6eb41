package speechkit

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"recipechat/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
	ycsdk "github.com/yandex-cloud/go-sdk"
	"github.com/yandex-cloud/go-sdk/iamkey"
)

// ErrSpeechDisabled is returned when no service account key is configured.
var ErrSpeechDisabled = errors.New("speech recognition is disabled")

type YandexSpeechKit struct {
	languages []string
	sdk       *ycsdk.SDK
}

func NewClient(di *do.Injector) (*YandexSpeechKit, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	speechCfg := cfg.Yandex.SpeechKit
	if speechCfg.KeyFile == "" {
		return &YandexSpeechKit{}, nil
	}

	keyBytes, err := os.ReadFile(speechCfg.KeyFile)
	if err != nil {
		return nil, oops.In("speechkit").With("path", speechCfg.KeyFile).Wrapf(err, "could not read service account key")
	}

	var key iamkey.Key
	if err = json.Unmarshal(keyBytes, &key); err != nil {
		return nil, oops.In("speechkit").Wrapf(err, "could not parse service account key")
	}

	creds, err := ycsdk.ServiceAccountKey(&key)
	if err != nil {
		return nil, oops.In("speechkit").Wrapf(err, "could not create service account credentials")
	}

	sdk, err := ycsdk.Build(ctx, ycsdk.Config{
		Credentials: creds,
	})
	if err != nil {
		return nil, oops.In("speechkit").Wrapf(err, "failed to create Yandex SDK")
	}

	return &YandexSpeechKit{
		languages: speechCfg.Languages,
		sdk:       sdk,
	}, nil
}

func (y *YandexSpeechKit) Enabled() bool {
	return y.sdk != nil
}

func (y *YandexSpeechKit) Start(ctx context.Context) (*Handle, error) {
	if !y.Enabled() {
		return nil, ErrSpeechDisabled
	}

	ctx, cancel := context.WithCancel(ctx)

	client, err := y.sdk.AI().STTV3().Recognizer().RecognizeStreaming(ctx)
	if err != nil {
		cancel()
		return nil, oops.In("speechkit").Wrapf(err, "failed to open recognition stream")
	}

	return &Handle{
		client:    client,
		cancel:    cancel,
		languages: y.languages,
	}, nil
}
