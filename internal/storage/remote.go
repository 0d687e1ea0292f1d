package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"diwholesale/internal/config"
	"diwholesale/internal/domain"
	"diwholesale/internal/metrics"
)

// UploadTransformation fits images into a 1000x1000 box without upscaling and
// lets the service pick the quality.
const UploadTransformation = "c_limit,h_1000,w_1000/q_auto"

const remoteHost = "res.cloudinary.com"

var versionSegment = regexp.MustCompile(`^v[0-9]+/`)

// ObjectAPI is the part of the Cloudinary upload API the Remote backend uses.
type ObjectAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Remote stores images in Cloudinary under a fixed namespace.
type Remote struct {
	api       ObjectAPI
	cloud     string
	namespace string
	limits    Limits
}

// NewRemote builds a Remote backend from account credentials.
func NewRemote(cfg config.RemoteConfig, limits Limits) (*Remote, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	return NewRemoteWithAPI(&cld.Upload, cfg.CloudName, cfg.Namespace, limits), nil
}

func NewRemoteWithAPI(a ObjectAPI, cloud, namespace string, limits Limits) *Remote {
	return &Remote{api: a, cloud: cloud, namespace: strings.Trim(namespace, "/"), limits: limits}
}

func (r *Remote) Name() string { return "remote" }

// Store uploads u as <namespace>/<folder>/<ObjectStem(u.Name)>. Existing
// objects are never overwritten, so a rerun for the same source file yields
// the object already stored.
func (r *Remote) Store(ctx context.Context, u Upload, folder string) (domain.AssetRef, error) {
	if err := r.limits.Check(u); err != nil {
		metrics.AssetUploads.WithLabelValues(r.Name(), "invalid").Inc()
		return domain.AssetRef{}, err
	}
	stem := ObjectStem(u.Name)
	if stem == "" {
		metrics.AssetUploads.WithLabelValues(r.Name(), "invalid").Inc()
		return domain.AssetRef{}, fmt.Errorf("%w: cannot derive object id from %q", ErrInvalidContent, u.Name)
	}
	params := uploader.UploadParams{
		PublicID:       r.objectID(folder, stem),
		Transformation: UploadTransformation,
		Overwrite:      api.Bool(false),
		UniqueFilename: api.Bool(false),
	}
	res, err := r.api.Upload(ctx, bytes.NewReader(u.Data), params)
	if err != nil {
		metrics.AssetUploads.WithLabelValues(r.Name(), "unavailable").Inc()
		return domain.AssetRef{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if res == nil || res.Error.Message != "" || res.SecureURL == "" {
		msg := "empty response"
		if res != nil && res.Error.Message != "" {
			msg = res.Error.Message
		}
		metrics.AssetUploads.WithLabelValues(r.Name(), "unavailable").Inc()
		return domain.AssetRef{}, fmt.Errorf("%w: %s", ErrStorageUnavailable, msg)
	}
	metrics.AssetUploads.WithLabelValues(r.Name(), "ok").Inc()
	return domain.RemoteRef(res.SecureURL), nil
}

// Delete destroys the object behind ref. URLs outside the namespace (or not
// served by the object store at all) are ignored.
func (r *Remote) Delete(ctx context.Context, ref domain.AssetRef) error {
	if ref.IsLocal() {
		return nil
	}
	id, ok := r.PublicID(ref)
	if !ok {
		return nil
	}
	res, err := r.api.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		metrics.AssetDeletes.WithLabelValues(r.Name(), "error").Inc()
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if res != nil && res.Error.Message != "" {
		metrics.AssetDeletes.WithLabelValues(r.Name(), "error").Inc()
		return fmt.Errorf("%w: %s", ErrStorageUnavailable, res.Error.Message)
	}
	if res != nil && res.Result == "not found" {
		metrics.AssetDeletes.WithLabelValues(r.Name(), "not_found").Inc()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	metrics.AssetDeletes.WithLabelValues(r.Name(), "ok").Inc()
	return nil
}

// Resolve returns the reference as is: remote references are final URLs.
func (r *Remote) Resolve(ref domain.AssetRef) string { return ref.String() }

// PublicID recovers the object id from a delivery URL by dropping everything
// up to /upload/, an optional version segment and the extension. It reports
// false for URLs this backend does not own.
func (r *Remote) PublicID(ref domain.AssetRef) (string, bool) {
	u, err := url.Parse(ref.String())
	if err != nil || !strings.EqualFold(u.Host, remoteHost) {
		return "", false
	}
	p := u.Path
	if r.cloud != "" && !strings.HasPrefix(p, "/"+r.cloud+"/") {
		return "", false
	}
	i := strings.Index(p, "/upload/")
	if i < 0 {
		return "", false
	}
	rest := versionSegment.ReplaceAllString(p[i+len("/upload/"):], "")
	rest = strings.TrimSuffix(rest, path.Ext(rest))
	if rest == "" || (r.namespace != "" && !strings.HasPrefix(rest, r.namespace+"/")) {
		return "", false
	}
	return rest, true
}

func (r *Remote) objectID(folder, stem string) string {
	parts := []string{}
	if r.namespace != "" {
		parts = append(parts, r.namespace)
	}
	if f := strings.Trim(folder, "/"); f != "" {
		parts = append(parts, f)
	}
	return strings.Join(append(parts, stem), "/")
}
