// Package media pushes profile images to the hosted image service.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type ImageKind string

const (
	ImageProfile ImageKind = "profile"
	ImageCover   ImageKind = "cover"
)

// ParseImageKind defaults to a profile picture.
func ParseImageKind(s string) (ImageKind, error) {
	switch strings.TrimSpace(s) {
	case "", string(ImageProfile):
		return ImageProfile, nil
	case string(ImageCover):
		return ImageCover, nil
	}
	return "", fmt.Errorf("unknown image type %q", s)
}

// MaxBytes is the upload size cap for the kind.
func (k ImageKind) MaxBytes() int64 {
	if k == ImageCover {
		return 5 << 20
	}
	return 2 << 20
}

func (k ImageKind) SizeLabel() string {
	if k == ImageCover {
		return "5MB"
	}
	return "2MB"
}

// Transformation is the host-side crop and format chain for the kind.
func (k ImageKind) Transformation() string {
	if k == ImageCover {
		return "c_fill,h_300,w_800/q_auto,f_auto"
	}
	return "c_fill,g_face,h_200,w_200/q_auto,f_auto"
}

// ProfileField is the profile document field holding the image URL.
func (k ImageKind) ProfileField() string {
	if k == ImageCover {
		return "coverImage"
	}
	return "profilePicture"
}

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func AllowedType(mime string) bool {
	return allowedTypes[mime]
}

// Folder is where a role's images of a kind are stored, e.g. investmate/startups/cover.
func Folder(role string, kind ImageKind) string {
	return fmt.Sprintf("investmate/%ss/%s", role, kind)
}

func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

type UploadOptions struct {
	Folder         string
	PublicID       string
	Transformation string
}

// Uploader stores an image given as a data URI and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, dataURI string, opts UploadOptions) (string, error)
}

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from a cloudinary:// URL or, failing
// that, from separate credentials. It returns nil when nothing is configured.
func NewCloudinary(url, cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	switch {
	case url != "":
		cld, err = cloudinary.NewFromURL(url)
	case cloudName != "" && apiKey != "" && apiSecret != "":
		cld, err = cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, dataURI string, opts UploadOptions) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{
		Folder:         opts.Folder,
		PublicID:       opts.PublicID,
		Transformation: opts.Transformation,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary upload: empty secure_url")
	}
	return res.SecureURL, nil
}
