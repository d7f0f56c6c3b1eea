// Package artfiles stores campaign art files in S3 and inspects them for
// obvious print problems before they reach the classifier or the printer.
package artfiles

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config holds art-file storage settings.
type Config struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	AWSProfile string `yaml:"aws_profile"`
}

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// ArtFile describes one stored file.
type ArtFile struct {
	Key        string    `json:"key"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// Store is the S3-backed art-file store.
type Store struct {
	client S3API
	bucket string
}

// NewStore builds an S3-backed store from AWS config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AWSProfile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Store{client: s3.NewFromConfig(awsCfg), bucket: cfg.Bucket}, nil
}

// NewStoreWithClient builds a store around an existing client (tests).
func NewStoreWithClient(client S3API, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

func artPrefix(campaignID string) string {
	return fmt.Sprintf("campaigns/%s/art/", campaignID)
}

// Upload stores one art file and returns its record, including any print
// warnings from inspection. Warnings never block the upload.
func (s *Store) Upload(ctx context.Context, campaignID, filename string, data []byte) (*ArtFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	clean := path.Base(filename)
	key := artPrefix(campaignID) + clean

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(clean)),
	})
	if err != nil {
		return nil, fmt.Errorf("upload art file: %w", err)
	}

	return &ArtFile{
		Key:        key,
		Filename:   clean,
		Size:       int64(len(data)),
		UploadedAt: time.Now().UTC(),
		Warnings:   Inspect(clean, data),
	}, nil
}

// List returns the art files stored for a campaign.
func (s *Store) List(ctx context.Context, campaignID string) ([]ArtFile, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(artPrefix(campaignID)),
	})
	if err != nil {
		return nil, fmt.Errorf("list art files: %w", err)
	}

	var files []ArtFile
	for _, obj := range out.Contents {
		f := ArtFile{Key: aws.ToString(obj.Key), Filename: path.Base(aws.ToString(obj.Key))}
		if obj.Size != nil {
			f.Size = *obj.Size
		}
		if obj.LastModified != nil {
			f.UploadedAt = *obj.LastModified
		}
		files = append(files, f)
	}
	return files, nil
}

// Delete removes one art file. The key must live under the campaign's art
// prefix so a crafted key can't reach other campaigns.
func (s *Store) Delete(ctx context.Context, campaignID, key string) error {
	if !strings.HasPrefix(key, artPrefix(campaignID)) {
		return fmt.Errorf("key %q is outside campaign %s", key, campaignID)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete art file: %w", err)
	}
	return nil
}

// AgreementKey returns the storage key of a campaign's rendered agreement.
func AgreementKey(campaignID string) string {
	return fmt.Sprintf("campaigns/%s/agreement.html", campaignID)
}

// PutAgreement stores the rendered agreement document next to the
// campaign's art files and returns its key.
func (s *Store) PutAgreement(ctx context.Context, campaignID, html string) (string, error) {
	key := AgreementKey(campaignID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(html),
		ContentType: aws.String("text/html"),
	})
	if err != nil {
		return "", fmt.Errorf("store agreement: %w", err)
	}
	return key, nil
}

func contentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".tif", ".tiff":
		return "image/tiff"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}
