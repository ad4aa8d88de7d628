package bot

import (
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/mmdyrbwtat-lang/cloud-bot/core/config"
	tg "github.com/mmdyrbwtat-lang/cloud-bot/core/telegram"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/telegram/commands"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/telegram/router"
	"github.com/mmdyrbwtat-lang/cloud-bot/flow"
)

// mediaEndpoints are the update types that carry a storable file.
var mediaEndpoints = []string{
	tele.OnPhoto,
	tele.OnVideo,
	tele.OnAnimation,
	tele.OnDocument,
	tele.OnAudio,
	tele.OnVoice,
}

// buttonTags is every inline-button tag the screens render; each one gets a
// callback registration so no press falls through to the unknown handler.
var buttonTags = []flow.ButtonTag{
	flow.TagMenu,
	flow.TagHelp,
	flow.TagCategories,
	flow.TagBrowseList,
	flow.TagDeleteList,
	flow.TagPickCategory,
	flow.TagCreateNew,
	flow.TagBrowseCategory,
	flow.TagPrevPage,
	flow.TagNextPage,
	flow.TagAddFiles,
	flow.TagDone,
	flow.TagDeleteCategory,
	flow.TagConfirmDelete,
	flow.TagCancelDelete,
	flow.TagNoop,
}

// BuildRunOptions assembles the complete bot wiring: registry, middleware
// chain, command/callback/text/media routes.
func BuildRunOptions(cfg *coreconfig.Config, machine *flow.Machine) tg.RunOptions {
	h := NewHandlers(machine, cfg.Telegram.ArchiveChannelID)

	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Command("/start"),
		Description: "Start over",
	})
	reg.RegisterCommand("/menu", commands.Command{
		Handler:     h.Command("/menu"),
		Description: "Main menu",
	})
	reg.RegisterCommand("/files", commands.Command{
		Handler:     h.Command("/files"),
		Description: "Browse your files",
	})
	reg.RegisterCommand("/categories", commands.Command{
		Handler:     h.Command("/categories"),
		Description: "Pick or create a category",
	})
	reg.RegisterCommand("/delete", commands.Command{
		Handler:     h.Command("/delete"),
		Description: "Delete a category",
	})
	reg.RegisterCommand("/done", commands.Command{
		Handler:     h.Command("/done"),
		Description: "Finish the current upload",
		Hidden:      true,
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Command("/help"),
		Description: "How this works",
	})

	for _, tag := range buttonTags {
		_ = reg.RegisterCallback(string(tag), h.Callback(tag))
	}

	// Text that is neither a command nor part of a conversation still goes to
	// the machine, which answers with the menu.
	reg.SetTextFallback(h.OnText)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(h, reg, router.TextOptions{}))
	routes = append(routes, router.MediaRoutes(h.OnMedia, mediaEndpoints...)...)

	return tg.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
	}
}
