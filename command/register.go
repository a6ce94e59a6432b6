package command

import (
	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shader-export/gallery"
	shaderqry "github.com/goliatone/go-shader-export/query"
)

// RegisterHandlers wires the shader commands and queries to go-command.
func RegisterHandlers(reg *gcmd.Registry, svc gallery.Service) ([]dispatcher.Subscription, error) {
	if svc == nil {
		return nil, errors.New("gallery service is required", errors.CategoryValidation).
			WithTextCode("SERVICE_REQUIRED")
	}

	exp := NewExportShaderHandler(svc)
	scaffold := NewScaffoldShaderHandler()

	get := shaderqry.NewGetShaderHandler(svc)
	list := shaderqry.NewListShadersHandler(svc)
	formats := shaderqry.NewListFormatsHandler(svc)
	history := shaderqry.NewExportHistoryHandler(svc)

	subscriptions := []dispatcher.Subscription{
		dispatcher.SubscribeCommand(exp),
		dispatcher.SubscribeCommand(scaffold),
		dispatcher.SubscribeQuery(get),
		dispatcher.SubscribeQuery(list),
		dispatcher.SubscribeQuery(formats),
		dispatcher.SubscribeQuery(history),
	}

	if reg != nil {
		handlers := []any{exp, scaffold, get, list, formats, history}
		for _, handler := range handlers {
			if err := reg.RegisterCommand(handler); err != nil {
				return subscriptions, err
			}
		}
	}

	return subscriptions, nil
}
