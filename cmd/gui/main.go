package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Hussein-Mazeh/SecurePM/auth"
	"github.com/Hussein-Mazeh/SecurePM/internal/config"
	"github.com/Hussein-Mazeh/SecurePM/internal/service"
	"github.com/Hussein-Mazeh/SecurePM/internal/vault"
)

var royalBlue = color.NRGBA{R: 18, G: 57, B: 166, A: 255}        // #1239A6 (deep royal)
var royalBlueLight = color.NRGBA{R: 224, G: 233, B: 255, A: 255} // soft tint

type accentTheme struct{ fyne.Theme }

func (a accentTheme) Color(n fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	switch n {
	case theme.ColorNamePrimary:
		return royalBlue
	case theme.ColorNameFocus:
		return color.NRGBA{R: royalBlue.R, G: royalBlue.G, B: royalBlue.B, A: 200}
	case theme.ColorNameHover:
		return color.NRGBA{R: royalBlue.R, G: royalBlue.G, B: royalBlue.B, A: 30}
	}
	return a.Theme.Color(n, v)
}

// blueHeader creates a royal-blue title bar with white text.
func blueHeader(title string) fyne.CanvasObject {
	bg := canvas.NewRectangle(royalBlue)
	bg.SetMinSize(fyne.NewSize(0, 36))
	t := canvas.NewText(title, color.White)
	t.TextStyle = fyne.TextStyle{Bold: true}
	return container.NewMax(bg, container.NewPadded(t))
}

// sectionCard wraps a header + body with padding.
func sectionCard(title string, body fyne.CanvasObject) *fyne.Container {
	border := canvas.NewRectangle(color.NRGBA{R: 230, G: 230, B: 230, A: 255})
	content := container.NewBorder(
		blueHeader(title), nil, nil, nil,
		container.NewPadded(body),
	)
	return container.NewMax(border, content)
}

func main() {
	cfg := config.NewConfig()
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()

	logger, err := cfg.BuildLogger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}

	svc, err := service.New(cfg.DBPath(), logger)
	if err != nil {
		log.Fatalf("open vault: %v", err)
	}
	defer svc.Close()

	a := app.New()
	a.Settings().SetTheme(accentTheme{theme.DefaultTheme()})
	w := a.NewWindow("Secure Password Manager")
	w.Resize(fyne.NewSize(760, 520))

	ui := &gui{app: a, win: w, svc: svc}
	ui.start()
	w.ShowAndRun()
}

type gui struct {
	app fyne.App
	win fyne.Window
	svc *service.Service

	table  *widget.Table
	items  []service.ListItem
	filter service.Filter
	search string
}

func (g *gui) start() {
	needed, err := g.svc.NeedsSignup()
	if err != nil {
		dialog.ShowError(fmt.Errorf("inspect vault: %w", err), g.win)
		return
	}
	if needed {
		g.showSignup()
	} else {
		g.showLogin()
	}
}

func (g *gui) showLogin() {
	g.svc.Logout()

	username := widget.NewEntry()
	username.SetPlaceHolder("Username")
	password := widget.NewPasswordEntry()
	password.SetPlaceHolder("Master password")

	login := widget.NewButton("Login", func() {
		if err := g.svc.Login(username.Text, password.Text); err != nil {
			if errors.Is(err, vault.ErrAuthenticationFailed) {
				dialog.ShowInformation("Login failed", "Invalid credentials.", g.win)
				return
			}
			dialog.ShowError(err, g.win)
			return
		}
		password.SetText("")
		g.showMain()
	})
	login.Importance = widget.HighImportance

	form := container.NewVBox(
		widget.NewLabel("Username:"), username,
		widget.NewLabel("Master password:"), password,
		login,
	)
	g.win.SetContent(container.NewPadded(sectionCard("SPM Login", form)))
}

func (g *gui) showSignup() {
	username := widget.NewEntry()
	username.SetPlaceHolder("Username")
	password := widget.NewPasswordEntry()
	password.SetPlaceHolder("Master password")
	confirm := widget.NewPasswordEntry()
	confirm.SetPlaceHolder("Confirm master password")

	signup := widget.NewButton("Sign Up", func() {
		if password.Text != confirm.Text {
			dialog.ShowInformation("Sign up", "Passwords do not match.", g.win)
			return
		}
		opts := auth.DefaultValidateOptions()
		if err := auth.ValidateMasterPasswordAdvanced(context.Background(), password.Text, opts); err != nil {
			dialog.ShowInformation("Sign up", err.Error(), g.win)
			return
		}
		if err := g.svc.SignUp(username.Text, password.Text); err != nil {
			dialog.ShowError(err, g.win)
			return
		}
		if err := g.svc.Login(username.Text, password.Text); err != nil {
			dialog.ShowError(err, g.win)
			return
		}
		password.SetText("")
		confirm.SetText("")
		g.showMain()
	})
	signup.Importance = widget.HighImportance

	form := container.NewVBox(
		widget.NewLabel("Username:"), username,
		widget.NewLabel("Master password:"), password,
		widget.NewLabel("Confirm master password:"), confirm,
		signup,
	)
	g.win.SetContent(container.NewPadded(sectionCard("Create Master Account", form)))
}

func (g *gui) showMain() {
	g.filter = service.Filter{}
	g.search = ""

	g.table = widget.NewTable(
		func() (int, int) { return len(g.items) + 1, 3 },
		func() fyne.CanvasObject {
			bg := canvas.NewRectangle(color.Transparent)
			lbl := widget.NewLabel("")
			return container.NewMax(bg, lbl)
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			cell := obj.(*fyne.Container)
			bg := cell.Objects[0].(*canvas.Rectangle)
			lbl := cell.Objects[1].(*widget.Label)

			if id.Row == 0 {
				bg.FillColor = royalBlue
				bg.Show()
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				switch id.Col {
				case 0:
					lbl.SetText("ID")
				case 1:
					lbl.SetText("Title")
				case 2:
					lbl.SetText("Username")
				}
				return
			}

			if id.Row%2 == 0 {
				bg.FillColor = royalBlueLight
				bg.Show()
			} else {
				bg.FillColor = color.Transparent
				bg.Hide()
			}

			r := g.items[id.Row-1]
			lbl.TextStyle = fyne.TextStyle{}
			switch id.Col {
			case 0:
				lbl.SetText(fmt.Sprintf("%d", r.ID))
			case 1:
				lbl.SetText(r.Title)
			case 2:
				lbl.SetText(r.Username)
			}
		},
	)
	g.table.SetColumnWidth(0, 60)
	g.table.SetColumnWidth(1, 260)
	g.table.SetColumnWidth(2, 220)

	var selected int64 = -1
	g.table.OnSelected = func(id widget.TableCellID) {
		if id.Row == 0 || id.Row > len(g.items) {
			selected = -1
			return
		}
		selected = g.items[id.Row-1].ID
	}

	scope := widget.NewSelect([]string{"All Items", "Favorites", "Trash"}, func(value string) {
		g.filter = service.Filter{
			Favorites: value == "Favorites",
			Trash:     value == "Trash",
		}
		g.refreshList()
	})
	scope.SetSelected("All Items")

	search := widget.NewEntry()
	search.SetPlaceHolder("Search title, username, website")
	search.OnChanged = func(text string) {
		g.search = text
		g.refreshList()
	}

	addBtn := widget.NewButton("Add", func() { g.showAddDialog() })
	addBtn.Importance = widget.HighImportance
	viewBtn := widget.NewButton("View", func() { g.withSelected(selected, g.showEntry) })
	trashBtn := widget.NewButton("Trash", func() { g.withSelected(selected, g.trashEntry) })
	restoreBtn := widget.NewButton("Restore", func() { g.withSelected(selected, g.restoreEntry) })
	purgeBtn := widget.NewButton("Purge", func() { g.withSelected(selected, g.purgeEntry) })
	logoutBtn := widget.NewButton("Logout", func() { g.showLogin() })

	toolbar := container.NewHBox(addBtn, viewBtn, trashBtn, restoreBtn, purgeBtn, logoutBtn)
	top := container.NewVBox(container.NewHBox(scope, widget.NewSeparator()), search, toolbar)

	g.win.SetContent(container.NewBorder(
		container.NewVBox(blueHeader("Secure Password Manager"), top),
		nil, nil, nil,
		g.table,
	))
	g.refreshList()
}

func (g *gui) refreshList() {
	items, err := g.svc.ListEntries(g.filter, g.search)
	if err != nil {
		dialog.ShowError(fmt.Errorf("list entries: %w", err), g.win)
		return
	}
	g.items = items
	g.table.Refresh()
}

func (g *gui) withSelected(id int64, op func(int64)) {
	if id < 0 {
		dialog.ShowInformation("No selection", "Select an entry first.", g.win)
		return
	}
	op(id)
}

func (g *gui) showAddDialog() {
	title := widget.NewEntry()
	username := widget.NewEntry()
	website := widget.NewEntry()
	category := widget.NewEntry()
	notes := widget.NewMultiLineEntry()
	secret := widget.NewPasswordEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Title", title),
		widget.NewFormItem("Username", username),
		widget.NewFormItem("Website", website),
		widget.NewFormItem("Category", category),
		widget.NewFormItem("Notes", notes),
		widget.NewFormItem("Secret", secret),
	}

	dialog.ShowForm("Add Entry", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if len(title.Text) > 20 {
			dialog.ShowInformation("Add Entry", "Title must be at most 20 characters.", g.win)
			return
		}
		fields := service.EntryFields{
			Title:    title.Text,
			Username: username.Text,
			Website:  website.Text,
			Category: category.Text,
			Notes:    notes.Text,
		}
		if _, err := g.svc.AddEntry(fields, secret.Text); err != nil {
			if errors.Is(err, vault.ErrDuplicateTitle) {
				dialog.ShowInformation("Add Entry", "An entry with that title already exists.", g.win)
				return
			}
			dialog.ShowError(err, g.win)
			return
		}
		g.refreshList()
	}, g.win)
}

func (g *gui) showEntry(id int64) {
	entry, err := g.svc.GetEntry(id)
	if err != nil {
		switch {
		case errors.Is(err, vault.ErrDecryptionFailed), errors.Is(err, vault.ErrMalformedCiphertext):
			dialog.ShowInformation("Decryption failed",
				"This entry's secret could not be decrypted; the record may be corrupted.", g.win)
		default:
			dialog.ShowError(err, g.win)
		}
		return
	}

	secret := widget.NewPasswordEntry()
	secret.SetText(entry.Secret)
	secret.Disable()

	body := container.NewVBox(
		widget.NewLabel("Username: "+entry.Username),
		widget.NewLabel("Website:  "+entry.Website),
		widget.NewLabel("Category: "+entry.Category),
		widget.NewLabel("Notes:    "+entry.Notes),
		secret,
	)
	dialog.ShowCustom(entry.Title, "Close", sectionCard(entry.Title, body), g.win)
}

func (g *gui) trashEntry(id int64) {
	if err := g.svc.SoftDelete(id); err != nil {
		dialog.ShowError(err, g.win)
		return
	}
	g.refreshList()
}

func (g *gui) restoreEntry(id int64) {
	if err := g.svc.Restore(id); err != nil {
		if errors.Is(err, vault.ErrDuplicateTitle) {
			dialog.ShowInformation("Restore",
				"A live entry already uses that title; rename or purge it first.", g.win)
			return
		}
		dialog.ShowError(err, g.win)
		return
	}
	g.refreshList()
}

func (g *gui) purgeEntry(id int64) {
	dialog.ShowConfirm("Purge entry",
		"Permanently delete this entry? This cannot be undone.",
		func(ok bool) {
			if !ok {
				return
			}
			if err := g.svc.Purge(id); err != nil {
				dialog.ShowError(err, g.win)
				return
			}
			g.refreshList()
		}, g.win)
}
