package models

import (
	"encoding/json"
	"strings"
)

// ProjectInput is the body of POST /projects. Spaces may be given as plain
// names or as {"name": ...} objects.
type ProjectInput struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Spaces []SpaceName `json:"spaces"`
}

// SpaceName accepts either "Kitchen" or {"name": "Kitchen"}.
type SpaceName string

func (n *SpaceName) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*n = SpaceName(obj.Name)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = SpaceName(s)
	return nil
}

// SpaceInput is the body of POST /projects/:projectId/spaces.
type SpaceInput struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Images []string `json:"images"`
}

// MeasurementInput is the body of POST .../measurements.
type MeasurementInput struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Quantity   *float64    `json:"quantity"`
	Dimensions *Dimensions `json:"dimensions"`
	Category   *string     `json:"category"`
	Note       string      `json:"note"`
	Images     []string    `json:"images"`
}

// UploadURL is returned by the upload-url route: the client PUTs the file
// to UploadURL and then stores PublicURL in the space's images.
type UploadURL struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
}
