package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ProofBucket holds uploaded proof-of-payment images.
const ProofBucket = "payment-proofs"

// ProofService stores proof-of-payment images outside the entity store.
// Callers upload first and pass the returned reference to
// UpdateInvoiceStatus.
type ProofService interface {
	UploadProof(ctx context.Context, invoiceID string, reader io.Reader, size int64) (string, error)
	ProofURL(objectName string, expiry time.Duration) (string, error)
	DeleteProof(ctx context.Context, objectName string) error
}

type minioProofService struct {
	client *minio.Client
}

// NewMinioProofService connects the MinIO-backed proof store and makes sure
// the bucket exists.
func NewMinioProofService(endpoint, accessKey, secretKey string, useSSL bool) (ProofService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	svc := &minioProofService{client: client}
	if err := svc.ensureBucket(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}

func (m *minioProofService) ensureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, ProofBucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, ProofBucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioProofService) UploadProof(ctx context.Context, invoiceID string, reader io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("%s/%d", invoiceID, time.Now().UnixNano())
	_, err := m.client.PutObject(ctx, ProofBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (m *minioProofService) ProofURL(objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), ProofBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioProofService) DeleteProof(ctx context.Context, objectName string) error {
	return m.client.RemoveObject(ctx, ProofBucket, objectName, minio.RemoveObjectOptions{})
}
