package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Mensaje representa un mensaje genérico entre módulos
type Mensaje struct {
	Tipo      int         `json:"tipo"`
	Operacion string      `json:"operacion"`
	Origen    string      `json:"origen"`
	Datos     interface{} `json:"datos"`
}

// HTTPClient representa un cliente HTTP para comunicación entre módulos
type HTTPClient struct {
	BaseURL string
	Nombre  string
	client  *http.Client
}

// NewHTTPClient crea un nuevo cliente HTTP
func NewHTTPClient(ip string, puerto int, nombre string) *HTTPClient {
	return NewHTTPClientURL(fmt.Sprintf("http://%s:%d", ip, puerto), nombre)
}

// NewHTTPClientURL crea un cliente a partir de una URL base completa
func NewHTTPClientURL(baseURL string, nombre string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Nombre:  nombre,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EnviarHTTPMensaje envía un mensaje a través de HTTP
func (c *HTTPClient) EnviarHTTPMensaje(tipo int, operacion string, datos interface{}) (interface{}, error) {
	return c.EnviarHTTPMensajeContext(context.Background(), tipo, operacion, datos)
}

// EnviarHTTPMensajeContext envía el mensaje y corta la espera si ctx se cancela
func (c *HTTPClient) EnviarHTTPMensajeContext(ctx context.Context, tipo int, operacion string, datos interface{}) (interface{}, error) {
	cuerpo, err := json.Marshal(Mensaje{
		Tipo:      tipo,
		Operacion: operacion,
		Origen:    c.Nombre,
		Datos:     datos,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error al serializar mensaje")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/mensaje", bytes.NewReader(cuerpo))
	if err != nil {
		return nil, errors.Wrap(err, "error al armar el pedido")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error al enviar mensaje %d a %s", tipo, c.BaseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("respuesta HTTP no exitosa: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	var resultado interface{}
	if err := json.NewDecoder(resp.Body).Decode(&resultado); err != nil {
		return nil, errors.Wrap(err, "error al decodificar respuesta")
	}

	slog.Debug("Respuesta recibida", "destino", c.BaseURL, "tipo", tipo)
	return resultado, nil
}

// EnviarYValidar envía el mensaje y convierte la respuesta en mapa. Una
// respuesta con campo "error" se devuelve como error.
func (c *HTTPClient) EnviarYValidar(tipo int, datos map[string]interface{}) (map[string]interface{}, error) {
	respuesta, err := c.EnviarHTTPMensaje(tipo, "default", datos)
	if err != nil {
		return nil, err
	}

	mapa, ok := respuesta.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("respuesta con formato inesperado: %T", respuesta)
	}
	if msgError, existe := mapa["error"]; existe {
		return mapa, errors.Errorf("%v", msgError)
	}

	return mapa, nil
}

// VerificarConexion verifica si un módulo está disponible
func (c *HTTPClient) VerificarConexion() error {
	resp, err := c.client.Get(fmt.Sprintf("%s/health", c.BaseURL))
	if err != nil {
		return errors.Wrapf(err, "error al verificar conexión con %s", c.BaseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("estado inesperado al verificar conexión: %d", resp.StatusCode)
	}

	var result map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrap(err, "error al decodificar respuesta de verificación")
	}

	slog.Info("Conexión verificada", "destino", c.BaseURL, "módulo", result["module"])
	return nil
}
