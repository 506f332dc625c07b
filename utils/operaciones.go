package utils

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// AplicarRetardo aplica un retardo simulado y lo registra
func AplicarRetardo(operacion string, duracionMs int) {
	if duracionMs <= 0 {
		return
	}
	slog.Debug("Aplicando retardo", "operación", operacion, "duración_ms", duracionMs)
	time.Sleep(time.Duration(duracionMs) * time.Millisecond)
}

// ConRetardo envuelve un handler para que cada mensaje pague el retardo configurado
func ConRetardo(operacion string, retardoMs int, handler HTTPHandlerFunc) HTTPHandlerFunc {
	return func(msg *Mensaje) (interface{}, error) {
		AplicarRetardo(operacion, retardoMs)
		return handler(msg)
	}
}

// DatosMensaje devuelve los datos del mensaje como mapa
func DatosMensaje(msg *Mensaje) (map[string]interface{}, error) {
	if msg.Datos == nil {
		return map[string]interface{}{}, nil
	}
	datos, ok := msg.Datos.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("formato de datos incorrecto: %T", msg.Datos)
	}
	return datos, nil
}

// ExtraerEntero lee un campo numérico. JSON decodifica los números como float64.
func ExtraerEntero(datos map[string]interface{}, clave string) (int, bool) {
	switch valor := datos[clave].(type) {
	case float64:
		return int(valor), true
	case int:
		return valor, true
	case uint32:
		return int(valor), true
	default:
		return 0, false
	}
}
