package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/studentdesk/internal/app/api"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/bootstrap"
	"github.com/yigit/studentdesk/internal/config"
	"github.com/yigit/studentdesk/internal/pkg/validation"
	"github.com/yigit/studentdesk/internal/server"
)

// loadConfig reads the config named by --config; --api overrides the backend URL
func loadConfig(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	if baseURL := c.String("api"); baseURL != "" {
		if err := os.Setenv("API_BASE_URL", baseURL); err != nil {
			return nil, zerolog.Logger{}, err
		}
	}
	return bootstrap.LoadConfigAndSetupLogger(c.String("config"))
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the desk: views, notifications and live updates",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "with-devapi", Usage: "also run the in-memory reference backend"},
		},
		Action: func(c *cli.Context) error {
			cfg, lgr, err := loadConfig(c)
			if err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(c.Context)
			if c.Bool("with-devapi") {
				dev, err := server.NewDevAPIServer(cfg, lgr)
				if err != nil {
					return err
				}
				g.Go(func() error { return dev.Run(ctx) })
			}

			desk, _ := server.NewDeskServer(cfg, lgr)
			g.Go(func() error { return desk.Run(ctx) })

			if err := g.Wait(); err != nil {
				return err
			}
			lgr.Info().Msg("Application finished gracefully.")
			return nil
		},
	}
}

func devAPICommand() *cli.Command {
	return &cli.Command{
		Name:  "devapi",
		Usage: "run the in-memory reference backend",
		Action: func(c *cli.Context) error {
			cfg, lgr, err := loadDevConfig(c)
			if err != nil {
				return err
			}
			dev, err := server.NewDevAPIServer(cfg, lgr)
			if err != nil {
				return err
			}
			return dev.Run(c.Context)
		},
	}
}

// loadDevConfig is loadConfig for the backend itself, which does not need a
// backend URL of its own
func loadDevConfig(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	if c.String("api") == "" && os.Getenv("API_BASE_URL") == "" {
		if err := os.Setenv("API_BASE_URL", "http://localhost"); err != nil {
			return nil, zerolog.Logger{}, err
		}
	}
	return loadConfig(c)
}

func newClient(c *cli.Context) (*api.Client, error) {
	cfg, lgr, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.APIBaseURL(), api.WithLogger(lgr)), nil
}

func studentsCommand() *cli.Command {
	studentFlags := []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "course", Usage: "course id", Required: true},
		&cli.PathFlag{Name: "image", Usage: "optional image file"},
	}

	return &cli.Command{
		Name:  "students",
		Usage: "list and change students on the backend",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print every student",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json"}},
				Action: func(c *cli.Context) error {
					client, err := newClient(c)
					if err != nil {
						return err
					}
					students, err := client.ListStudents(c.Context)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return writeJSON(c.App.Writer, students)
					}
					return writeStudents(c.App.Writer, students)
				},
			},
			{
				Name:  "add",
				Usage: "create a student",
				Flags: studentFlags,
				Action: func(c *cli.Context) error {
					client, err := newClient(c)
					if err != nil {
						return err
					}
					in, closeImage, err := studentInputFromFlags(c)
					if err != nil {
						return err
					}
					defer closeImage()

					student, err := client.CreateStudent(c.Context, in)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, student)
				},
			},
			{
				Name:      "edit",
				Usage:     "update a student",
				ArgsUsage: "<id>",
				Flags:     studentFlags,
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if id == "" {
						return cli.Exit("student id is required", 2)
					}
					client, err := newClient(c)
					if err != nil {
						return err
					}
					in, closeImage, err := studentInputFromFlags(c)
					if err != nil {
						return err
					}
					defer closeImage()
					in.ID = id

					student, err := client.UpdateStudent(c.Context, id, in)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, student)
				},
			},
			{
				Name:      "remove",
				Usage:     "delete a student",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if id == "" {
						return cli.Exit("student id is required", 2)
					}
					client, err := newClient(c)
					if err != nil {
						return err
					}
					confirmation, err := client.DeleteStudent(c.Context, id)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, confirmation.Message)
					return nil
				},
			},
		},
	}
}

func coursesCommand() *cli.Command {
	return &cli.Command{
		Name:  "courses",
		Usage: "list and create courses on the backend",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print every course",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json"}},
				Action: func(c *cli.Context) error {
					client, err := newClient(c)
					if err != nil {
						return err
					}
					courses, err := client.ListCourses(c.Context)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return writeJSON(c.App.Writer, courses)
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
					for _, course := range courses {
						fmt.Fprintf(w, "%s\t%s\t%s\n", course.ID, course.Name, course.Description)
					}
					return w.Flush()
				},
			},
			{
				Name:  "add",
				Usage: "create a course",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
				},
				Action: func(c *cli.Context) error {
					client, err := newClient(c)
					if err != nil {
						return err
					}
					course, err := client.CreateCourse(c.Context, models.CourseInput{
						Name:        c.String("name"),
						Description: c.String("description"),
					})
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, course)
				},
			},
		},
	}
}

// studentInputFromFlags builds the form; the returned func closes the image file
func studentInputFromFlags(c *cli.Context) (models.StudentInput, func(), error) {
	in := models.StudentInput{
		Name:     c.String("name"),
		Email:    c.String("email"),
		CourseID: c.String("course"),
	}
	if err := validation.ValidateStudentInput(&in); err != nil {
		return models.StudentInput{}, nil, err
	}

	path := c.Path("image")
	if path == "" {
		return in, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return models.StudentInput{}, nil, fmt.Errorf("failed to open image: %w", err)
	}
	in.Image = &models.ImageUpload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     f,
	}
	return in, func() { f.Close() }, nil
}

func writeStudents(out io.Writer, students []models.Student) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCOURSE")
	for _, s := range students {
		course := "-"
		if s.Course != nil && s.Course.Name != "" {
			course = s.Course.Name
		} else if id := s.CourseID(); id != "" {
			course = id
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Email, course)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
