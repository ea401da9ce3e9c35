package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/seion-lab/kintai/pkg/domain/model"
	"github.com/seion-lab/kintai/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// cmdScan is a terminal scanner client: it reads card identifiers line by
// line (as an attached RFID reader emits them on stdin) and posts each one
// to a running server.
func cmdScan() *cli.Command {
	var serverURL string
	var timeout time.Duration

	return &cli.Command{
		Name:  "scan",
		Usage: "Read card IDs from stdin and send them to a kintai server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Usage:       "Base URL of the kintai server",
				Value:       "http://localhost:8080",
				Sources:     cli.EnvVars("KINTAI_SERVER"),
				Destination: &serverURL,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "Request timeout per scan",
				Value:       10 * time.Second,
				Destination: &timeout,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			client := &http.Client{Timeout: timeout}
			endpoint := strings.TrimRight(serverURL, "/") + "/api/scan"

			success := color.New(color.FgGreen)
			complete := color.New(color.FgYellow)
			failure := color.New(color.FgRed)

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				cardUID := strings.TrimSpace(scanner.Text())
				if cardUID == "" {
					continue
				}

				result, err := postScan(ctx, client, endpoint, cardUID)
				if err != nil {
					failure.Printf("scan failed: %v\n", err)
					continue
				}

				switch {
				case result.Success:
					success.Printf("[%s] %s\n", result.Action, result.Message)
				case result.Action != "":
					complete.Printf("[%s] %s\n", result.Action, result.Message)
				default:
					failure.Println(result.Message)
				}
			}

			if err := scanner.Err(); err != nil {
				return goerr.Wrap(err, "failed to read from stdin")
			}
			return nil
		},
	}
}

func postScan(ctx context.Context, client *http.Client, endpoint, cardUID string) (*model.ScanResult, error) {
	body, err := json.Marshal(map[string]string{"card_uid": cardUID})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal scan request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build scan request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to reach server")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status from server", goerr.V("status", resp.StatusCode))
	}

	var result model.ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode scan result")
	}
	return &result, nil
}
