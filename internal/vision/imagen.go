package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexImagen renders variations with a Vertex AI Imagen edit model.
type VertexImagen struct {
	projectID          string
	location           string
	model              string
	accessToken        string
	serviceAccount     string
	serviceAccountJSON string

	predict func(ctx context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error)
}

// VertexImagenConfig describes how to connect to Imagen.
type VertexImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	AccessToken        string
	ServiceAccount     string
	ServiceAccountJSON string
}

// NewVertexImagen wires a VertexImagen client.
func NewVertexImagen(cfg VertexImagenConfig) *VertexImagen {
	v := &VertexImagen{
		projectID:          strings.TrimSpace(cfg.ProjectID),
		location:           strings.TrimSpace(cfg.Location),
		model:              strings.TrimSpace(cfg.Model),
		accessToken:        strings.TrimSpace(cfg.AccessToken),
		serviceAccount:     strings.TrimSpace(cfg.ServiceAccount),
		serviceAccountJSON: strings.TrimSpace(cfg.ServiceAccountJSON),
	}
	v.predict = v.remotePredict
	return v
}

// Render runs an Imagen edit request against the source photo.
func (v *VertexImagen) Render(ctx context.Context, source Image, prompt string) (Image, error) {
	if v.projectID == "" || v.location == "" || v.model == "" {
		return Image{}, errors.New("imagen: missing project/location/model")
	}
	if strings.TrimSpace(prompt) == "" {
		return Image{}, errors.New("imagen: prompt is required")
	}
	if len(source.Data) == 0 {
		return Image{}, errors.New("imagen: reference image is required")
	}

	instance, err := structpb.NewValue(map[string]any{
		"prompt": prompt,
		"image": map[string]any{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(source.Data),
		},
	})
	if err != nil {
		return Image{}, err
	}

	params, err := structpb.NewValue(map[string]any{
		"sampleCount": 1,
		"editMode":    "inpainting-free-form",
	})
	if err != nil {
		return Image{}, err
	}

	resp, err := v.predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:   fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", v.projectID, v.location, v.model),
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	})
	if err != nil {
		return Image{}, fmt.Errorf("imagen: predict: %w", err)
	}
	if len(resp.GetPredictions()) == 0 {
		return Image{}, errors.New("imagen: empty prediction response")
	}

	fields := resp.Predictions[0].GetStructValue().GetFields()
	field := fields["bytesBase64Encoded"]
	if field == nil {
		return Image{}, errors.New("imagen: prediction missing bytes")
	}
	data, err := base64.StdEncoding.DecodeString(field.GetStringValue())
	if err != nil {
		return Image{}, fmt.Errorf("imagen: decode result: %w", err)
	}

	mime := "image/png"
	if m := fields["mimeType"].GetStringValue(); m != "" {
		mime = m
	}
	return Image{Data: data, MIMEType: mime}, nil
}

func (v *VertexImagen) clientOptions() []option.ClientOption {
	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", v.location))}
	switch {
	case v.serviceAccountJSON != "":
		options = append(options, option.WithCredentialsJSON([]byte(v.serviceAccountJSON)))
	case v.serviceAccount != "":
		options = append(options, option.WithCredentialsFile(v.serviceAccount))
	case v.accessToken != "":
		options = append(options, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: v.accessToken})))
	}
	return options
}

func (v *VertexImagen) remotePredict(ctx context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
	client, err := aiplatform.NewPredictionClient(ctx, v.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("prediction client: %w", err)
	}
	defer client.Close()
	return client.Predict(ctx, req)
}
