package firestore

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firestore"
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/projects"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

const defaultDatabase = "(default)"

// SetupFirestore enables Firestore, creates the default database and the
// indexes and TTL policy the API relies on.
func SetupFirestore(ctx *pulumi.Context, prov *gcp.Provider) (*firestore.Database, error) {
	svc, err := enableFireStore(ctx, prov)
	if err != nil {
		return nil, err
	}

	db, err := createDatabase(ctx, prov, svc)
	if err != nil {
		return nil, err
	}

	if err := expireAssistantMessages(ctx, prov, db); err != nil {
		return nil, err
	}
	return db, nil
}

func enableFireStore(ctx *pulumi.Context, prov *gcp.Provider) (*projects.Service, error) {
	return projects.NewService(ctx, "firestore", &projects.ServiceArgs{
		Service: pulumi.String("firestore.googleapis.com"),
	},
		pulumi.Provider(prov),
	)
}

func createDatabase(ctx *pulumi.Context, prov *gcp.Provider, res ...pulumi.Resource) (*firestore.Database, error) {
	gcpCfg := config.New(ctx, "gcp")
	projectID := gcpCfg.Require("project")
	region := gcpCfg.Require("region")

	return firestore.NewDatabase(ctx, "firestoreDatabase", &firestore.DatabaseArgs{
		Project:    pulumi.String(projectID),
		Name:       pulumi.String(defaultDatabase),
		LocationId: pulumi.String(region),
		Type:       pulumi.String("FIRESTORE_NATIVE"),
	},
		pulumi.Provider(prov),
		pulumi.DependsOn(res),
	)
}

// expireAssistantMessages turns on the TTL policy for chat history. The API
// writes expiresAt on every message.
func expireAssistantMessages(ctx *pulumi.Context, prov *gcp.Provider, db *firestore.Database) error {
	_, err := firestore.NewField(ctx, "assistantMessagesTTL", &firestore.FieldArgs{
		Database:   db.Name,
		Collection: pulumi.String("assistant_messages"),
		Field:      pulumi.String("expiresAt"),
		TtlConfig:  &firestore.FieldTtlConfigArgs{},
	},
		pulumi.Provider(prov),
		pulumi.DependsOn([]pulumi.Resource{db}),
	)
	return err
}
