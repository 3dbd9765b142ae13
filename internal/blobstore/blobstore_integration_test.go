//go:build integration

package blobstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupAzurite(t *testing.T) (*Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mcr.microsoft.com/azure-storage/azurite",
		Cmd:          []string{"azurite-blob", "--blobHost", "0.0.0.0", "--skipApiVersionCheck", "--loose"},
		ExposedPorts: []string{"10000/tcp"},
		WaitingFor: wait.ForListeningPort("10000/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "10000")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client, err := NewClient(connectionString(fmt.Sprintf("http://%s:%s", host, port.Port())), nil)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create client: %v", err)
	}

	return client, func() { container.Terminate(ctx) }
}

func TestIntegration_ListAndDownload(t *testing.T) {
	client, cleanup := setupAzurite(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := client.client.CreateContainer(ctx, "staff", nil); err != nil {
		t.Fatalf("CreateContainer failed: %v", err)
	}

	blobs := map[string]string{
		"Infinion_images/ada/1.jpg":   "ada-1",
		"Infinion_images/ada/2.jpg":   "ada-2",
		"Infinion_images/grace/1.jpg": "grace-1",
		"Other/bob/1.jpg":             "bob-1",
	}
	for name, content := range blobs {
		if _, err := client.client.UploadBuffer(ctx, "staff", name, []byte(content), nil); err != nil {
			t.Fatalf("UploadBuffer %s failed: %v", name, err)
		}
	}

	container := client.Container("staff")
	names, err := container.List(ctx, "Infinion_images/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 blobs under Infinion_images/, got %v", names)
	}

	data, err := container.Download(ctx, "Infinion_images/grace/1.jpg")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != "grace-1" {
		t.Errorf("unexpected content %q", data)
	}

	if _, err := container.Download(ctx, "Infinion_images/nobody.jpg"); !IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}
