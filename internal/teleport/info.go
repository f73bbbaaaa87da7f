// Package teleport moves relations through object storage instead of the
// database: models read and write parquet files whose locations are tracked
// in a DataLocation registry.
package teleport

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

const FormatParquet = "parquet"

// CredentialsType selects the storage backend.
type CredentialsType string

const (
	CredentialsLocal    CredentialsType = "local"
	CredentialsRemoteS3 CredentialsType = "remote_s3"
)

// DefaultRelationTemplate places every relation in its own object.
const DefaultRelationTemplate = "{relation}.{format}"

var (
	ErrLocationNotFound       = errors.New("relation location not found")
	ErrUnsupportedFormat      = errors.New("teleport format not supported")
	ErrUnsupportedCredentials = errors.New("teleport storage type not supported")
	ErrInvalidRelation        = errors.New("invalid teleport relation")
)

type Credentials struct {
	Type          CredentialsType `json:"type" yaml:"type"`
	LocalPath     string          `json:"local_path,omitempty" yaml:"local_path,omitempty"`
	S3Bucket      string          `json:"s3_bucket,omitempty" yaml:"s3_bucket,omitempty"`
	S3Region      string          `json:"s3_region,omitempty" yaml:"s3_region,omitempty"`
	S3Endpoint    string          `json:"s3_endpoint,omitempty" yaml:"s3_endpoint,omitempty"`
	S3AccessKeyID string          `json:"s3_access_key_id,omitempty" yaml:"s3_access_key_id,omitempty"`
	S3AccessKey   string          `json:"s3_access_key,omitempty" yaml:"s3_access_key,omitempty"`
	S3Token       string          `json:"s3_token,omitempty" yaml:"s3_token,omitempty"`
}

// Info is the teleport configuration of one run.
type Info struct {
	Format      string      `json:"format" yaml:"format"`
	Credentials Credentials `json:"credentials" yaml:"credentials"`
	// RelationTemplate may use {relation} and {format}.
	RelationTemplate string `json:"relation_template,omitempty" yaml:"relation_template,omitempty"`
}

// ValidateRelation rejects names that are not a single path segment.
func ValidateRelation(relation string) error {
	switch {
	case strings.TrimSpace(relation) == "", relation == ".", relation == "..":
		return fmt.Errorf("%w: %q", ErrInvalidRelation, relation)
	case strings.ContainsAny(relation, `/\`):
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidRelation, relation)
	}
	return nil
}

// BuildRelationPath returns the storage path relation is written to. Distinct
// relations never share a path.
func (i Info) BuildRelationPath(relation string) (string, error) {
	if err := ValidateRelation(relation); err != nil {
		return "", err
	}
	tmpl := i.RelationTemplate
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultRelationTemplate
	}
	return strings.NewReplacer("{relation}", relation, "{format}", i.Format).Replace(tmpl), nil
}

// BuildURL turns a relation path into a fully qualified storage URL. The
// result always stays below LocalPath or inside the bucket.
func (i Info) BuildURL(relationPath string) (string, error) {
	rel := path.Clean(filepath.ToSlash(relationPath))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", fmt.Errorf("%w: path %q escapes the teleport root", ErrInvalidRelation, relationPath)
	}
	switch i.Credentials.Type {
	case CredentialsLocal:
		return filepath.Join(i.Credentials.LocalPath, filepath.FromSlash(rel)), nil
	case CredentialsRemoteS3:
		if strings.TrimSpace(i.Credentials.S3Bucket) == "" {
			return "", errors.New("s3 bucket is required")
		}
		return "s3://" + strings.Trim(i.Credentials.S3Bucket, "/") + "/" + rel, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCredentials, i.Credentials.Type)
	}
}

// StorageOptions returns the credentials the storage backend needs.
func StorageOptions(info Info) (map[string]string, error) {
	opts := map[string]string{}
	switch info.Credentials.Type {
	case CredentialsRemoteS3:
		opts["key"] = info.Credentials.S3AccessKeyID
		opts["secret"] = info.Credentials.S3AccessKey
		if info.Credentials.S3Endpoint != "" {
			opts["endpoint_url"] = info.Credentials.S3Endpoint
		}
		if info.Credentials.S3Region != "" {
			opts["region"] = info.Credentials.S3Region
		}
		if info.Credentials.S3Token != "" {
			opts["token"] = info.Credentials.S3Token
		}
	case CredentialsLocal:
	default:
		return nil, fmt.Errorf("%w: Teleport storage type %s not supported", ErrUnsupportedCredentials, info.Credentials.Type)
	}
	return opts, nil
}
