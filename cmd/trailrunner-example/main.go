/*
trailrunner-example is a toy app showing how a trailrunner app is put together:

(1) registering handlers and access checks in Init;
(2) routing requests to them through a table of Routes;
(3) rendering handler output into a layout and a page;
(4) keeping values in the session;
(5) counting visits in PostgreSQL when [runner] useDatabase is on.

Run it from this directory and visit http://localhost:3000/.
Append ?debug to any URL to see which parts of the page each template rendered.
*/
package main

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/trailrunner"
	"github.com/xy-planning-network/trailrunner/logger"
	"github.com/xy-planning-network/trailrunner/runner"
)

const (
	configPathEnvVar     = "CONFIG_PATH"
	writableFolderEnvVar = "WRITABLE_FOLDER"

	userKey = "user"

	// these refer to templates available for rendering
	layout = "layout.tmpl"
	page   = "page.tmpl"
	home   = "home.tmpl"
)

type app struct {
	visits visitCounter
}

// Init registers everything the example app needs on rn.
// Visits are counted in the database when one is configured.
func (a *app) Init(rn *runner.Runner) error {
	if db := rn.DB(); db != nil {
		a.visits = dbVisits{db}
	} else {
		a.visits = newMemVisits()
	}

	rn.SetLayoutTemplate(layout)
	rn.SetPageTemplate(page)

	rn.AccessCheck("loggedIn", a.loggedIn)
	rn.AccessCheck("notUser", a.notUser)

	rn.Handle("home", "get", a.home)
	rn.Handle("hello", "get", a.hello)
	rn.Handle("login", "get", a.loginForm)
	rn.Handle("login", "post", a.login)
	rn.Handle("logout", "get", a.logout)
	rn.Handle("ping", "get", a.ping)

	return rn.RegisterRoutes([]runner.Route{
		{Path: "/", Name: "home"},
		{Path: "/hello/{name}", AccessChecks: "loggedIn|notUser:root", Name: "hello"},
		{Path: "/login", Name: "login", Methods: "get|post"},
		{Path: "/logout", AccessChecks: "loggedIn", Name: "logout"},
		{Path: "/ping", Name: "ping"},
	})
}

// NotFoundPage renders the body of every 404.
func (a *app) NotFoundPage(c *runner.Context) (string, error) {
	return fmt.Sprintf("<h1>Nothing at %s</h1>", html.EscapeString(c.Request().URL.Path)), nil
}

func (a *app) loggedIn(c *runner.Context, _ ...string) error {
	if _, ok := c.SessionValue(userKey, nil).(string); ok {
		return nil
	}

	if err := c.Redirect("/login"); err != nil {
		return err
	}

	return fmt.Errorf("%w: not logged in", trailrunner.ErrNotValid)
}

// notUser denies access to requests whose first path argument is one of names.
func (a *app) notUser(c *runner.Context, names ...string) error {
	for _, name := range names {
		if c.Vars()["name"] == name {
			return fmt.Errorf("%w: cannot greet %s", trailrunner.ErrNotValid, name)
		}
	}

	return nil
}

func (a *app) home(c *runner.Context, _ ...string) (string, error) {
	visits, err := a.visits.Visit(c.Request().URL.Path)
	if err != nil {
		return "", err
	}

	total, err := a.visits.Total()
	if err != nil {
		return "", err
	}

	user, _ := c.SessionValue(userKey, "stranger").(string)

	return c.Template().LoadTemplate(c.Request().Context(), home, map[string]any{
		"user":   user,
		"visits": visits,
		"total":  total,
		"now":    c.Now(),
	}, "")
}

func (a *app) hello(c *runner.Context, args ...string) (string, error) {
	return fmt.Sprintf("<p>Hello, %s!</p>", html.EscapeString(args[0])), nil
}

func (a *app) loginForm(c *runner.Context, _ ...string) (string, error) {
	return `<form method="post"><input name="user"><button>Log in</button></form>`, nil
}

func (a *app) login(c *runner.Context, _ ...string) (string, error) {
	user := c.PostValue(userKey, "")
	if user == "" {
		c.SetStatusCode(http.StatusBadRequest, "Missing User")
		return "<p>Who are you?</p>", nil
	}

	if err := c.SetSessionValue(userKey, user); err != nil {
		return "", err
	}

	return "", c.Redirect("/")
}

func (a *app) logout(c *runner.Context, _ ...string) (string, error) {
	if err := c.UnsetSessionValue(userKey); err != nil {
		return "", err
	}

	return "", c.Redirect("/")
}

// ping answers without any templates.
func (a *app) ping(c *runner.Context, _ ...string) (string, error) {
	c.SetIsAjaxResponse()
	c.ResponseWriter().Header().Set("Content-Type", "application/json")

	return `{"pong":true}`, nil
}

func main() {
	l := logger.New()

	rn, err := runner.New(
		trailrunner.EnvVarOrString(configPathEnvVar, "app.ini"),
		trailrunner.EnvVarOrString(writableFolderEnvVar, os.TempDir()),
		new(app),
		runner.WithLogger(l),
		runner.WithMigrations(migrations...),
	)
	if err != nil {
		l.Fatal(err.Error(), nil)
		os.Exit(1)
	}

	if err := rn.Run(context.Background()); err != nil {
		l.Fatal(err.Error(), nil)
		os.Exit(1)
	}
}
