package registry

import (
	"fmt"
	"net/http"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
)

const ContentDigestHeader = "Docker-Content-Digest"

// ImageDigest resolves the manifest digest for an image reference via a
// registry HEAD request. Results ride the shared request cache, a deploy
// asks for the same suite images the preflight just checked.
func ImageDigest(imageRef string) (digest.Digest, error) {
	named, err := reference.ParseNormalizedNamed(imageRef)
	if err != nil {
		return "", fmt.Errorf("parse image ref %q: %w", imageRef, err)
	}
	tag := "latest"
	if tagged, ok := named.(reference.Tagged); ok {
		tag = tagged.Tag()
	}
	if digested, ok := named.(reference.Digested); ok {
		// already pinned
		return digested.Digest(), nil
	}

	client := New(WithRegistryHost(reference.Domain(named)))
	u := client.url.JoinPath(reference.Path(named), "manifests", tag)
	req, err := http.NewRequest("HEAD", u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Add("Accept", "application/vnd.docker.distribution.manifest.v2+json")
	req.Header.Add("Accept", "application/vnd.docker.distribution.manifest.list.v2+json")
	req.Header.Add("Accept", "application/vnd.oci.image.manifest.v1+json")
	req.Header.Add("Accept", "application/vnd.oci.image.index.v1+json")

	res, err := client.request(req, fmt.Sprintf("repository:%s:pull", reference.Path(named)))
	if err != nil {
		return "", err
	}
	raw := res.Header.Get(ContentDigestHeader)
	if raw == "" {
		return "", fmt.Errorf("registry %s answered without a %s header for %s", reference.Domain(named), ContentDigestHeader, imageRef)
	}
	parsed, err := digest.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("registry %s answered with an invalid digest %q: %w", reference.Domain(named), raw, err)
	}
	return parsed, nil
}

// PinImage rewrites image:tag to image:tag@sha256:... so every node runs
// identical bits.
func PinImage(imageRef string) (string, error) {
	named, err := reference.ParseNormalizedNamed(imageRef)
	if err != nil {
		return "", err
	}
	if _, ok := named.(reference.Digested); ok {
		return imageRef, nil
	}
	resolved, err := ImageDigest(imageRef)
	if err != nil {
		return "", err
	}
	named = reference.TagNameOnly(named)
	canonical, err := reference.WithDigest(named, resolved)
	if err != nil {
		return "", err
	}
	return reference.FamiliarString(canonical), nil
}
