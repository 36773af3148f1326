package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/airbusgeo/scene-exporter/service"
	"github.com/airbusgeo/scene-exporter/service/log"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/option/internaloption"
	htransport "google.golang.org/api/transport/http"
)

// DefaultEndpoint of the Earth Engine REST API
const DefaultEndpoint = "https://earthengine.googleapis.com/"

// Scopes required to query and export
var Scopes = []string{
	"https://www.googleapis.com/auth/earthengine",
	"https://www.googleapis.com/auth/cloud-platform",
}

// Client of the Earth Engine REST API, bound to a cloud project
type Client struct {
	http     *http.Client
	endpoint string
	project  string
}

// Credentials returns the client option to authenticate either with a service account key file
// or, if keyFile is empty, with the application default credentials
func Credentials(ctx context.Context, keyFile string) (option.ClientOption, error) {
	var creds *google.Credentials
	var err error
	if keyFile != "" {
		data, e := service.ReadFile(ctx, keyFile)
		if e != nil {
			return nil, fmt.Errorf("Credentials.%w", e)
		}
		creds, err = google.CredentialsFromJSON(ctx, data, Scopes...)
	} else {
		creds, err = google.FindDefaultCredentials(ctx, Scopes...)
	}
	if err != nil {
		return nil, fmt.Errorf("Credentials: %w", err)
	}
	return option.WithTokenSource(creds.TokenSource), nil
}

// NewClient creates a client for the given cloud project.
// option.WithEndpoint overrides DefaultEndpoint.
func NewClient(ctx context.Context, project string, opts ...option.ClientOption) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("NewClient: missing cloud project")
	}
	opts = append([]option.ClientOption{
		internaloption.WithDefaultEndpoint(DefaultEndpoint),
		internaloption.WithDefaultScopes(Scopes...),
	}, opts...)
	hc, endpoint, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewClient: %w", err)
	}
	return &Client{
		http:     hc,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		project:  strings.TrimPrefix(project, "projects/"),
	}, nil
}

// Project returns the resource name of the project (projects/<id>)
func (c *Client) Project() string {
	return "projects/" + c.project
}

// post sends the body to the method of the project and decodes the response into v
func (c *Client) post(ctx context.Context, method string, body, v interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("Marshal: %w", err)
	}
	url := c.endpoint + "/v1/" + c.Project() + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("NewRequest: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer res.Body.Close()
	if err := googleapi.CheckResponse(res); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return service.MakeTemporary(fmt.Errorf("%s.ReadAll: %w", method, err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s.Unmarshal: %w (response: %s)", method, err, data)
	}
	return nil
}

// Compute evaluates the expression and decodes the result into v
func (c *Client) Compute(ctx context.Context, expr *Expression, v interface{}) error {
	resp := computeValueResponse{}
	if err := c.post(ctx, "value:compute", &ComputeValueRequest{Expression: expr}, &resp); err != nil {
		return fmt.Errorf("Compute.%w", err)
	}
	// Result is a generic json value
	b, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("Compute.Marshal: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("Compute.Unmarshal: %w", err)
	}
	return nil
}

// Export submits an image export and returns the name of the long-running operation
// The operation is not awaited.
func (c *Client) Export(ctx context.Context, req *ExportImageRequest) (string, error) {
	op := Operation{}
	if err := c.post(ctx, "image:export", req, &op); err != nil {
		return "", fmt.Errorf("Export[%s].%w", req.Description, err)
	}
	log.Logger(ctx).Debug("export queued", zap.String("description", req.Description), zap.String("operation", op.Name))
	return op.Name, nil
}
