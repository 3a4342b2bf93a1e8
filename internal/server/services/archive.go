package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ideaforge/internal/logging"
	"github.com/dmitrijs2005/ideaforge/internal/models"
	"github.com/dmitrijs2005/ideaforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ideaforge/internal/timex"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const exportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Settings locate the S3-compatible bucket used for exports.
type S3Settings struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// ArchiveService exports a plan with its full version history to object
// storage and hands back a short-lived download link.
type ArchiveService struct {
	store
	s3     S3Settings
	logger logging.Logger
}

func NewArchiveService(db *sql.DB, rm repomanager.RepositoryManager, clock timex.Clock, s3cfg S3Settings, l logging.Logger) *ArchiveService {
	return &ArchiveService{store: newStore(db, rm, clock), s3: s3cfg, logger: l.With("module", "archive_service")}
}

type planExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Plan       *models.Plan      `json:"plan"`
	Versions   []*models.Version `json:"versions"`
}

// ExportKey is the object key for an export taken at t.
func ExportKey(planID string, t time.Time) string {
	return fmt.Sprintf("exports/%s/%s.json", planID, t.UTC().Format("20060102T150405Z"))
}

func (s *ArchiveService) s3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.s3.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.s3.RootUser,
			s.s3.RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.s3.BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// ExportPlan uploads the owner's plan and all its versions as one JSON
// document and returns a presigned GET URL.
func (s *ArchiveService) ExportPlan(ctx context.Context, ownerID, planID string) (string, error) {
	plan, _, err := s.authorize(ctx, s.db, Actor{UserID: ownerID}, planID, accessOwner)
	if err != nil {
		return "", err
	}
	versions, err := s.repomanager.Versions(s.db).ListByPlan(ctx, planID)
	if err != nil {
		return "", err
	}

	now := s.now()
	body, err := json.Marshal(planExport{ExportedAt: now, Plan: plan, Versions: versions})
	if err != nil {
		return "", err
	}

	client, err := s.s3Client(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.s3.Bucket
	key := ExportKey(planID, now)

	if err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportURLValidity))
	if err != nil {
		return "", fmt.Errorf("presign export: %w", err)
	}

	s.logger.Info(ctx, "plan exported", "plan_id", planID, "key", key, "versions", len(versions))
	return req.URL, nil
}
