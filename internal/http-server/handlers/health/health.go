package health

import (
	"net/http"
	"qrlink/lib/api/response"

	"github.com/go-chi/render"
)

type rootInfo struct {
	Message string `json:"message"`
	Project string `json:"project"`
}

type healthInfo struct {
	Status string `json:"status"`
	Env    string `json:"env"`
}

func Root(project string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(rootInfo{Message: "QR backend running", Project: project}))
	}
}

func Health(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.Ok(healthInfo{Status: "ok", Env: env}))
	}
}
