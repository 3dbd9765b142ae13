// Package blobstore lists and downloads blobs from Azure Blob Storage.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// Client is a storage account client. Containers obtained from it share
// the same HTTP session.
type Client struct {
	client *azblob.Client
}

// NewClient creates a client from a storage connection string. When httpClient
// is non-nil it is used as the transport and the SDK's own retries are turned
// off, so retry behavior comes from httpClient alone.
func NewClient(connectionString string, httpClient *http.Client) (*Client, error) {
	if connectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	var opts *azblob.ClientOptions
	if httpClient != nil {
		opts = &azblob.ClientOptions{
			ClientOptions: azcore.ClientOptions{
				Transport: httpClient,
				Retry:     policy.RetryOptions{MaxRetries: -1},
			},
		}
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, opts)
	if err != nil {
		return nil, fmt.Errorf("could not create blob client: %w", err)
	}
	return &Client{client: client}, nil
}

// Container returns a handle bound to the named container.
func (c *Client) Container(name string) *Container {
	return &Container{client: c.client, name: name}
}

// Container lists and downloads blobs of a single container.
type Container struct {
	client *azblob.Client
	name   string
}

// Name returns the container name.
func (c *Container) Name() string {
	return c.name
}

// List returns the names of all blobs whose name starts with prefix, in
// service order (lexicographic).
func (c *Container) List(ctx context.Context, prefix string) ([]string, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var names []string
	pager := c.client.NewListBlobsFlatPager(c.name, opts)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list blobs in %s: %w", c.name, err)
		}
		if resp.Segment == nil {
			continue
		}
		for _, item := range resp.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			names = append(names, *item.Name)
		}
	}
	return names, nil
}

// Download reads the whole content of a blob.
func (c *Container) Download(ctx context.Context, name string) ([]byte, error) {
	resp, err := c.client.DownloadStream(ctx, c.name, name, nil)
	if err != nil {
		return nil, fmt.Errorf("could not download %s/%s: %w", c.name, name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read %s/%s: %w", c.name, name, err)
	}
	return data, nil
}

// IsNotFound reports whether err means the blob or its container does not exist.
func IsNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}
