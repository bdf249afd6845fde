package cms

import (
	"fmt"
	"strings"

	"github.com/jvesely/portfolio/internal/content"
)

const imageCDN = "https://cdn.sanity.io/images"

// ImageURL resolves an asset reference of the form
// image-<id>-<width>x<height>-<format> to its CDN URL.
func ImageURL(projectID, dataset, ref string) (string, error) {
	rest, ok := strings.CutPrefix(ref, "image-")
	if !ok {
		return "", fmt.Errorf("not an image reference: %q", ref)
	}
	i := strings.LastIndexByte(rest, '-')
	if i <= 0 || i == len(rest)-1 {
		return "", fmt.Errorf("malformed image reference: %q", ref)
	}
	name, format := rest[:i], rest[i+1:]
	j := strings.LastIndexByte(name, '-')
	if j <= 0 || !strings.Contains(name[j+1:], "x") {
		return "", fmt.Errorf("image reference without dimensions: %q", ref)
	}
	return fmt.Sprintf("%s/%s/%s/%s.%s", imageCDN, projectID, dataset, name, format), nil
}

type wireImage struct {
	Asset struct {
		Ref string `json:"_ref"`
		URL string `json:"url"`
	} `json:"asset"`
	Alt string `json:"alt"`
}

func (c *Client) image(w *wireImage) *content.Image {
	if w == nil || (w.Asset.Ref == "" && w.Asset.URL == "") {
		return nil
	}
	img := &content.Image{Ref: w.Asset.Ref, URL: w.Asset.URL, Alt: w.Alt}
	if img.URL == "" {
		u, err := ImageURL(c.cfg.ProjectID, c.cfg.Dataset, img.Ref)
		if err != nil {
			c.logger.Sugar().Warnf("unresolved image: %v", err)
		} else {
			img.URL = u
		}
	}
	return img
}
