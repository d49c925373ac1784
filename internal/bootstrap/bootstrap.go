package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	gcpkms "cloud.google.com/go/kms/apiv1"
	"firebase.google.com/go/v4/auth"

	assistantclient "github.com/GregMSThompson/riskbi-backend/internal/client/assistant"
	"github.com/GregMSThompson/riskbi-backend/internal/config"
	"github.com/GregMSThompson/riskbi-backend/pkg/logger"
)

// Bootstrap holds the process-wide clients. Firestore, Firebase and KMS are
// nil when the configuration does not need them.
type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	KMS       *gcpkms.KeyManagementClient
	Assistant *assistantclient.Adapter
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.HandlerFor(cfg.LogFormat))
	bs.Assistant = assistantclient.NewAdapter(bs.Log, cfg.AssistantURL, cfg.AssistantRetries)

	if cfg.Storage == config.StorageFirestore {
		bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
		if cfg.KMSKeyName != "" {
			bs.KMS, err = InitKMS(applicationCtx)
			if err != nil {
				return bs, err
			}
		}
	}
	if cfg.Auth == config.AuthFirebase {
		bs.Firebase, err = InitFirebase(applicationCtx, cfg.ProjectID)
		if err != nil {
			return bs, err
		}
	}

	bs.Log.Info("bootstrap complete",
		"storage", cfg.Storage,
		"auth", cfg.Auth,
		"kms", bs.KMS != nil,
		"assistant_url", cfg.AssistantURL)
	return bs, nil
}

func (bs *Bootstrap) Close() error {
	var errList []error
	if bs.Firestore != nil {
		errList = append(errList, bs.Firestore.Close())
	}
	if bs.KMS != nil {
		errList = append(errList, bs.KMS.Close())
	}
	return errors.Join(errList...)
}
