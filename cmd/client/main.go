package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"image-converter/internal/domain/dto"
	"image-converter/internal/domain/entities"
	"image-converter/pkg/file"
)

const pollInterval = time.Second

type client struct {
	base string
	http *http.Client
}

func main() {
	server := flag.String("server", "http://localhost:3000/api/v1", "Server base URL")
	dir := flag.String("dir", ".", "Directory with the images to convert")
	settings := flag.String("settings", `{"format":"webp","quality":85}`, "Batch settings JSON")
	out := flag.String("out", "", "Where to save the archive (default converted-images-<jobId>.zip)")
	flag.Parse()

	images, err := collectImages(*dir)
	if err != nil {
		log.Fatalf("Cannot read %s: %v", *dir, err)
	}
	if len(images) == 0 {
		log.Fatalf("No images found in %s", *dir)
	}

	c := &client{base: strings.TrimRight(*server, "/"), http: &http.Client{Timeout: 5 * time.Minute}}

	fmt.Printf("Server: %s\n", c.base)
	fmt.Printf("Uploading %d images from %s\n", len(images), *dir)

	created, err := c.createBatch(images, *settings)
	if err != nil {
		log.Fatalf("Batch upload failed: %v", err)
	}
	fmt.Printf("Job ID: %s\n", created.JobID)
	fmt.Println("Press Ctrl+C to cancel...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			fmt.Println("\nCancelling job...")
			msg, err := c.cancel(created.JobID)
			if err != nil {
				log.Fatalf("Cancel request failed: %v", err)
			}
			fmt.Printf("Cancel response: %s\n", msg)
			return

		case <-ticker.C:
			view, err := c.status(created.JobID)
			if err != nil {
				log.Printf("\nStatus request failed: %v", err)
				continue
			}
			p := view.Progress
			fmt.Printf("\rProgress: %d/%d (%d%%) %.1f img/s, eta %.0fs   ", p.Processed, p.Total, p.Percentage, p.Speed, p.ETA)

			if !view.Status.IsTerminal() {
				continue
			}
			fmt.Printf("\nJob %s: %d succeeded, %d failed\n", view.Status, view.SuccessCount, view.FailedCount)
			for _, r := range view.Results {
				if !r.Success {
					fmt.Printf("  %s: %s\n", r.OriginalName, r.Error)
				}
			}
			for _, w := range view.Errors {
				fmt.Printf("  warning: %s\n", w)
			}
			if view.Status != entities.JobCompleted || view.DownloadURL == "" {
				if view.Error != "" {
					fmt.Printf("Error: %s\n", view.Error)
				}
				os.Exit(1)
			}

			target := *out
			if target == "" {
				target = "converted-images-" + created.JobID + ".zip"
			}
			n, err := c.download(view.DownloadURL, target)
			if err != nil {
				log.Fatalf("Download failed: %v", err)
			}
			fmt.Printf("Saved %s (%d bytes)\n", target, n)
			return
		}
	}
}

func collectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, e := range entries {
		if !e.IsDir() && file.IsImageFile(e.Name()) {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	return images, nil
}

func (c *client) createBatch(paths []string, settings string) (*dto.CreateJobResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, p := range paths {
		if err := addFile(writer, "images", p); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("settings", settings); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	resp, err := c.http.Post(c.base+"/process/batch", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	var created dto.CreateJobResponse
	if err := decodeResponse(resp, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func addFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func (c *client) status(jobID string) (*dto.JobView, error) {
	resp, err := c.http.Get(c.base + "/process/status/" + jobID)
	if err != nil {
		return nil, err
	}
	var view dto.JobView
	if err := decodeResponse(resp, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *client) cancel(jobID string) (string, error) {
	req, err := http.NewRequest(http.MethodDelete, c.base+"/process/cancel/"+jobID, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	var msg dto.MessageResponse
	if err := decodeResponse(resp, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// download fetches downloadURL, which is an absolute API path, into target.
func (c *client) download(downloadURL, target string) (int64, error) {
	url := downloadURL
	if strings.HasPrefix(url, "/") {
		url = serverRoot(c.base) + url
	}
	resp, err := c.http.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("HTTP %d %s", resp.StatusCode, string(b))
	}

	f, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(f, resp.Body)
}

// serverRoot strips the /api/v1 suffix from the configured base URL.
func serverRoot(base string) string {
	if i := strings.Index(base, "/api/"); i >= 0 {
		return base[:i]
	}
	return base
}

func decodeResponse(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var e dto.ErrorResponse
		b, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(b, &e) == nil && e.Message != "" {
			return fmt.Errorf("HTTP %d %s: %s", resp.StatusCode, e.Error, e.Message)
		}
		return fmt.Errorf("HTTP %d %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
