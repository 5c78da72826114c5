package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cineverse-labs/cineverse/internal/app"
	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/cineverse-labs/cineverse/internal/storage"
	"github.com/cineverse-labs/cineverse/internal/uploads"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const sessionHelp = `Commands:
  search <query>   search for movies (runs alongside catalog loading)
  home             leave search and go back to the catalog
  upload           add your own movie
  select <id>      show a movie's details
  close            close the details view
  show             print the whole current view
  help             show this help
  quit             end the session`

func newSessionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive browsing session",
		Long: `Starts an interactive session on stdin.

The catalog starts loading in the background straight away. Searches run
independently of it, and a newer search replaces an older one. Uploaded movies
live only until the session ends.

` + sessionHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions(opts.catalogPath)
			if err != nil {
				return err
			}
			gw, err := newGateway(opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			presenter := newTerminalPresenter(out)
			registry := uploads.New(storage.New())
			session := app.New(gw, defs, registry, presenter)

			s := &sessionRunner{
				app:     session,
				out:     out,
				in:      bufio.NewScanner(cmd.InOrStdin()),
				fs:      afero.NewOsFs(),
				present: presenter,
			}

			var wg conc.WaitGroup
			wg.Go(func() {
				session.LoadCatalog(ctx)
			})

			fmt.Fprintln(out, sessionHelp)
			s.loop(ctx, &wg)

			cancel()
			wg.Wait()
			return session.Close()
		},
	}
}

type sessionRunner struct {
	app     *app.App
	out     io.Writer
	in      *bufio.Scanner
	fs      afero.Fs
	present *terminalPresenter
}

func (s *sessionRunner) loop(ctx context.Context, wg *conc.WaitGroup) {
	for {
		line, ok := s.prompt("> ")
		if !ok || ctx.Err() != nil {
			return
		}

		command, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch strings.ToLower(command) {
		case "":
		case "search":
			if rest == "" {
				fmt.Fprintln(s.out, "usage: search <query>")
				continue
			}
			wg.Go(func() {
				s.app.SubmitSearch(ctx, rest)
			})
		case "home":
			s.app.GoHome()
		case "upload":
			s.upload(ctx)
		case "select":
			if !s.app.SelectByID(rest) {
				fmt.Fprintf(s.out, "no movie with id %q\n", rest)
			}
		case "close":
			s.app.Select(nil)
		case "show":
			s.present.renderAll(s.app.View())
		case "help":
			fmt.Fprintln(s.out, sessionHelp)
		case "quit", "exit":
			return
		default:
			fmt.Fprintf(s.out, "unknown command %q, type help\n", command)
		}
	}
}

func (s *sessionRunner) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *sessionRunner) upload(ctx context.Context) {
	s.app.OpenUpload()
	defer s.app.CloseUpload()

	year := strconv.Itoa(time.Now().Year())
	var form models.UploadForm
	fields := []struct {
		label string
		dest  *string
	}{
		{"Title", &form.Title},
		{"Description", &form.Description},
		{"Year [" + year + "]", &form.Year},
		{"Genre [" + uploads.DefaultGenre + "]", &form.Genre},
		{"Director", &form.Director},
		{"Cast (comma separated)", &form.Cast},
		{"Language [" + uploads.DefaultLanguage + "]", &form.Language},
		{"Rating [" + uploads.DefaultRating + "]", &form.Rating},
	}

	for _, f := range fields {
		value, ok := s.prompt(f.label + ": ")
		if !ok {
			return
		}
		*f.dest = value
	}

	thumbPath, ok := s.prompt("Thumbnail file (optional): ")
	if !ok {
		return
	}
	videoPath, ok := s.prompt("Video file (optional): ")
	if !ok {
		return
	}

	thumbnail, closeThumb, err := s.openMedia(thumbPath)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	defer closeThumb()
	video, closeVideo, err := s.openMedia(videoPath)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	defer closeVideo()

	_, err = s.app.SubmitUpload(ctx, form, thumbnail, video, func(pct int) {
		fmt.Fprintf(s.out, "\rUploading... %d%%", pct)
		if pct == 100 {
			fmt.Fprintln(s.out)
		}
	})
	switch {
	case errors.Is(err, uploads.ErrMissingFields):
		fmt.Fprintln(s.out, "Title and description are required.")
	case err != nil:
		fmt.Fprintf(s.out, "Upload failed: %v\n", err)
	}
}

func (s *sessionRunner) openMedia(path string) (*uploads.Media, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	return &uploads.Media{Name: f.Name(), Content: f}, func() { _ = f.Close() }, nil
}

// terminalPresenter prints only what changed between two views
type terminalPresenter struct {
	mu   sync.Mutex
	out  io.Writer
	last *app.View
}

func newTerminalPresenter(out io.Writer) *terminalPresenter {
	return &terminalPresenter{out: out}
}

func (p *terminalPresenter) Render(view app.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.last
	p.last = &view

	for i, section := range view.Sections {
		wasLoading := prev == nil || prev.Sections[i].Loading
		if wasLoading && !section.Loading {
			renderSection(p.out, section)
		}
	}

	if prev == nil || prev.Search.Status != view.Search.Status || prev.Search.Query != view.Search.Query {
		if view.Searching {
			renderSearch(p.out, view.Search)
		} else if prev != nil && prev.Searching {
			fmt.Fprintln(p.out, "\nBack to the catalog.")
		}
	}

	if view.Selected != nil && (prev == nil || prev.Selected == nil || prev.Selected.ID != view.Selected.ID) {
		renderDetail(p.out, *view.Selected)
	}
}

func (p *terminalPresenter) ScrollToTop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, "\n-- top of catalog --")
}

func (p *terminalPresenter) renderAll(view app.View) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if view.Searching {
		renderSearch(p.out, view.Search)
		return
	}
	if len(view.Uploads) > 0 {
		renderSection(p.out, models.Section{Title: "Your Uploads", Movies: view.Uploads})
	}
	for _, section := range view.Sections {
		renderSection(p.out, section)
	}
}
