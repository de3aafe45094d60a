package remote

import (
	"context"
	"fmt"
	"net/http"

	"resty.dev/v3"
)

// Client talks to the remote blob storage API over HTTP.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a client for the given API base URL, authenticated
// with a bearer token.
func NewClient(baseURL, apiToken string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetAuthToken(apiToken)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type folderResponse struct {
	Folders []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"folders"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type fileListResponse struct {
	Files []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"files"`
}

// EnsureFolder finds the named folder, creating it when absent.
func (client *Client) EnsureFolder(ctx context.Context, name string) (string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetQueryParam("name", name).
		SetResult(&folderResponse{}).
		Get("/folders")
	if err != nil {
		return "", fmt.Errorf("httpClient.Get(/folders) > %w", err)
	}
	if err := client.checkResponse(response); err != nil {
		return "", err
	}

	folders := response.Result().(*folderResponse)
	for _, folder := range folders.Folders {
		if folder.Name == name {
			return folder.ID, nil
		}
	}

	created, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name}).
		SetResult(&createdResponse{}).
		Post("/folders")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post(/folders) > %w", err)
	}
	if err := client.checkResponse(created); err != nil {
		return "", err
	}
	return created.Result().(*createdResponse).ID, nil
}

// FindFile looks up a file by name within a folder.
func (client *Client) FindFile(ctx context.Context, folderID, name string) (string, bool, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"folder_id": folderID,
			"name":      name,
		}).
		SetResult(&fileListResponse{}).
		Get("/files")
	if err != nil {
		return "", false, fmt.Errorf("httpClient.Get(/files) > %w", err)
	}
	if err := client.checkResponse(response); err != nil {
		return "", false, err
	}

	files := response.Result().(*fileListResponse)
	for _, file := range files.Files {
		if file.Name == name {
			return file.ID, true, nil
		}
	}
	return "", false, nil
}

// CreateFile creates a named file with the given content under a folder.
func (client *Client) CreateFile(ctx context.Context, folderID, name string, content []byte) (string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"folder_id": folderID,
			"name":      name,
			"content":   string(content),
		}).
		SetResult(&createdResponse{}).
		Post("/files")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post(/files) > %w", err)
	}
	if err := client.checkResponse(response); err != nil {
		return "", err
	}
	return response.Result().(*createdResponse).ID, nil
}

// UpdateFile replaces the content of an existing file by id.
func (client *Client) UpdateFile(ctx context.Context, fileID string, content []byte) error {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]any{"content": string(content)}).
		Patch("/files/" + fileID)
	if err != nil {
		return fmt.Errorf("httpClient.Patch(/files/%s) > %w", fileID, err)
	}
	return client.checkResponse(response)
}

// FetchContent downloads the raw content of a file by id.
func (client *Client) FetchContent(ctx context.Context, fileID string) ([]byte, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		Get("/files/" + fileID + "/content")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(/files/%s/content) > %w", fileID, err)
	}
	if err := client.checkResponse(response); err != nil {
		return nil, err
	}
	return []byte(response.String()), nil
}

func (client *Client) checkResponse(response *resty.Response) error {
	if response.StatusCode() == http.StatusUnauthorized || response.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("response error %d > %w", response.StatusCode(), ErrUnauthorized)
	}
	if response.IsError() {
		return fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}
	return nil
}
