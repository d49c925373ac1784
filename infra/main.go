package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/riskbi-backend/infra/cloudrun"
	"github.com/GregMSThompson/riskbi-backend/infra/docker"
	"github.com/GregMSThompson/riskbi-backend/infra/firestore"
	"github.com/GregMSThompson/riskbi-backend/infra/identity"
	"github.com/GregMSThompson/riskbi-backend/infra/kms"
	"github.com/GregMSThompson/riskbi-backend/infra/provider"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		prov, err := provider.SetupDefaultProvider(ctx)
		if err != nil {
			return err
		}

		// firebase sign-in for the dashboard users
		ident, err := identity.SetupIdentity(ctx, prov)
		if err != nil {
			return err
		}

		db, err := firestore.SetupFirestore(ctx, prov)
		if err != nil {
			return err
		}

		keys, err := kms.SetupKMS(ctx, prov)
		if err != nil {
			return err
		}
		sqlKey, err := kms.CreateKey(ctx, prov, keys, "riskbi", "saved-sql")
		if err != nil {
			return err
		}

		keyName := sqlKey.ID().ToStringOutput()

		repo, err := docker.CreateCloudrunRepo(ctx, prov)
		if err != nil {
			return err
		}

		apiSA, err := cloudrun.SetupCloudRun(ctx, prov, cloudrun.Inputs{KMSKeyName: keyName}, ident, db, repo)
		if err != nil {
			return err
		}

		if err := kms.GrantEncryptDecrypt(ctx, prov, sqlKey, apiSA); err != nil {
			return err
		}

		ctx.Export("kmsKeyName", keyName)
		return nil
	})
}
