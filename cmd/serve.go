package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/face-groups/internal/config"
	"github.com/kozaktomas/face-groups/internal/facegroup"
	"github.com/kozaktomas/face-groups/internal/web"
	"github.com/kozaktomas/face-groups/internal/web/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP API exposing identification, verification and training
status:

  GET  /api/v1/health
  POST /api/v1/identify             raw image body or {"url": "..."}; ?format=png
                                    (URLs only on hosts listed in WEB_IMAGE_HOSTS)
  POST /api/v1/verify               {"blob1": "...", "blob2": "..."}
  GET  /api/v1/groups/{id}/training`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (WEB_HOST)")
	serveCmd.Flags().String("group", "", "Default person group id (default from PERSON_GROUP_ID)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp("serve", func(cfg *config.Config) {
		applyGroupFlag(cmd, cfg)
		if changed(cmd, "port") {
			cfg.Web.Port = mustGetInt(cmd, "port")
		}
		if changed(cmd, "host") {
			cfg.Web.Host = mustGetString(cmd, "host")
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	maxBytes := a.cfg.Identify.MaxImageBytes
	fetchClient := imageFetchClient(a.httpClient, a.cfg.Web.ImageHosts)
	deps := web.Deps{
		Identifier:  a.service,
		Verifier:    a.service,
		Face:        a.face,
		VerifyStore: a.blobs.Container(a.cfg.Verify.Container),
		FetchImage: func(ctx context.Context, url string) ([]byte, error) {
			return facegroup.FetchImage(ctx, fetchClient, url, maxBytes)
		},
		GroupID: a.cfg.Enrollment.GroupID,
	}
	server := web.NewServer(a.cfg.Web, deps, a.logger)

	go func() {
		<-cmd.Context().Done()
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("error during shutdown", zap.Error(err))
		}
	}()

	fmt.Printf("Starting Face Groups API on http://%s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// imageFetchClient copies client and refuses redirects that leave hosts.
func imageFetchClient(client *http.Client, hosts []string) *http.Client {
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("stopped after 10 redirects")
		}
		if !handlers.HostAllowed(req.URL, hosts) {
			return fmt.Errorf("redirect to %s is not allowed", req.URL.Host)
		}
		return nil
	}
	return &c
}
