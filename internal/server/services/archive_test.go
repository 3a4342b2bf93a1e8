package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubS3(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origPut := putObject
	origNewPre := newS3PresignClient
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		putObject = origPut
		newS3PresignClient = origNewPre
		presignGetObject = origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "us-east-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" || !opts.UsePathStyle {
			t.Fatalf("s3 options not applied")
		}
		return &s3.Client{}
	}
	newS3PresignClient = func(*s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
}

func newArchiveFixture(t *testing.T) (*fixture, *ArchiveService) {
	t.Helper()
	f := newFixture(t)
	svc := NewArchiveService(nil, &memRepoManager{m: f.mem}, f.clock, S3Settings{
		RootUser:     "minioadmin",
		RootPassword: "minioadmin",
		Bucket:       "ideaforge",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000",
	}, logging.NopLogger{})
	return f, svc
}

func TestArchiveService_ExportPlan(t *testing.T) {
	stubS3(t)
	f, svc := newArchiveFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)
	_, _, err := f.plans.SavePlan(ctx, Actor{UserID: owner}, plan.ID, 0, "v2", fitnessContent())
	require.NoError(t, err)

	var uploaded planExport
	var uploadedKey string
	putObject = func(_ *s3.Client, _ context.Context, in *s3.PutObjectInput) error {
		assert.Equal(t, "ideaforge", *in.Bucket)
		uploadedKey = *in.Key
		raw, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		return json.Unmarshal(raw, &uploaded)
	}

	var gotExpiry time.Duration
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		gotExpiry = po.Expires
		return &v4.PresignedHTTPRequest{URL: "https://s3.local/" + *in.Key}, nil
	}

	url, err := svc.ExportPlan(ctx, owner, plan.ID)
	require.NoError(t, err)

	wantKey := ExportKey(plan.ID, t0)
	assert.Equal(t, wantKey, uploadedKey)
	assert.Equal(t, "https://s3.local/"+wantKey, url)
	assert.Equal(t, 15*time.Minute, gotExpiry)
	require.NotNil(t, uploaded.Plan)
	assert.Equal(t, "v2", uploaded.Plan.Title)
	require.Len(t, uploaded.Versions, 2)
	assert.Equal(t, 2, uploaded.Versions[0].VersionNumber)
}

func TestArchiveService_ExportPlan_Errors(t *testing.T) {
	stubS3(t)
	f, svc := newArchiveFixture(t)
	ctx := context.Background()
	plan := f.createPlan(t)

	_, err := svc.ExportPlan(ctx, "intruder", plan.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	putErr := errors.New("bucket missing")
	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput) error { return putErr }
	_, err = svc.ExportPlan(ctx, owner, plan.ID)
	assert.ErrorIs(t, err, putErr)

	putObject = func(*s3.Client, context.Context, *s3.PutObjectInput) error { return nil }
	presignErr := errors.New("presign failed")
	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, presignErr
	}
	_, err = svc.ExportPlan(ctx, owner, plan.ID)
	assert.ErrorIs(t, err, presignErr)

	cfgErr := errors.New("no config")
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, cfgErr
	}
	_, err = svc.ExportPlan(ctx, owner, plan.ID)
	assert.ErrorIs(t, err, cfgErr)
}

func TestExportKey(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "exports/p1/20250102T020405Z.json", ExportKey("p1", ts))
}
