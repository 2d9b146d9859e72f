package docs

import (
	"embed"
	"log"
	"net/http"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerFS embed.FS

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Relay Registry Admin API",
	Description:      "List, health-check and save the relay registry",
	InfoInstanceName: "swagger",
}

func init() {
	data, err := swaggerFS.ReadFile("swagger.json")
	if err != nil {
		log.Fatalf("failed to load swagger.json: %v", err)
	}
	SwaggerInfo.SwaggerTemplate = string(data)
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// SetHost pins the host advertised in the rendered document.
func SetHost(host, port string) {
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	if port != "" && port != "80" && port != "443" {
		host += ":" + port
	}
	SwaggerInfo.Host = host
}

func JSONHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(SwaggerInfo.ReadDoc()))
}
