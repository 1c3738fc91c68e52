package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

const resourceNotFound = "ResourceNotFoundException"

// ManagerAPI is the subset of the Secrets Manager client used by the vault.
type ManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSVault reads credentials and constants from AWS Secrets Manager.
// Credentials are JSON secrets with 'username' and 'password' fields and
// constants are plain string secrets. Secret ids are prefix + name.
type AWSVault struct {
	api    ManagerAPI
	prefix string
}

// NewAWSVault creates a vault using the default AWS configuration chain.
func NewAWSVault(ctx context.Context, region, prefix string) (*AWSVault, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSVaultWithAPI(secretsmanager.NewFromConfig(cfg), prefix), nil
}

func NewAWSVaultWithAPI(api ManagerAPI, prefix string) *AWSVault {
	return &AWSVault{
		api:    api,
		prefix: prefix,
	}
}

func (v *AWSVault) GetCredential(ctx context.Context, name string) (store.Credentials, error) {
	s, err := v.get(ctx, name)
	if err != nil {
		return store.Credentials{}, err
	}

	var credential struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.Unmarshal([]byte(s), &credential); err != nil {
		return store.Credentials{}, fmt.Errorf("credential '%s' is not a username/password secret (%w)", name, err)
	}

	return store.Credentials{
		Username: credential.Username,
		Password: credential.Password,
	}, nil
}

func (v *AWSVault) GetConstant(ctx context.Context, name string) (string, error) {
	s, err := v.get(ctx, name)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(s), nil
}

func (v *AWSVault) get(ctx context.Context, name string) (string, error) {
	id := v.prefix + name

	out, err := v.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(id)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == resourceNotFound {
			return "", fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		return "", fmt.Errorf("failed to get secret %s: %w", id, err)
	}

	if out.SecretString != nil {
		return *out.SecretString, nil
	}

	return string(out.SecretBinary), nil
}
