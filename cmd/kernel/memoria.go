package main

import (
	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

// ClienteMemoria es lo que el kernel necesita de la conexión con Memoria.
// *utils.HTTPClient la implementa.
type ClienteMemoria interface {
	EnviarYValidar(tipo int, datos map[string]interface{}) (map[string]interface{}, error)
}

func inicializarEnMemoria(cliente ClienteMemoria, pid uint32) error {
	_, err := cliente.EnviarYValidar(utils.MensajeInicializarProceso, map[string]interface{}{"pid": pid})
	return errors.Wrapf(err, "inicializar pid %d", pid)
}

func finalizarEnMemoria(cliente ClienteMemoria, pid uint32) error {
	_, err := cliente.EnviarYValidar(utils.MensajeFinalizarProceso, map[string]interface{}{"pid": pid})
	return errors.Wrapf(err, "finalizar pid %d", pid)
}

func reservarEnMemoria(cliente ClienteMemoria, pid uint32, tamanio uint32) (uint32, error) {
	respuesta, err := cliente.EnviarYValidar(utils.MensajeReservar, map[string]interface{}{
		"pid":     pid,
		"tamanio": tamanio,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "reservar %d bytes para pid %d", tamanio, pid)
	}

	dir, ok := utils.ExtraerEntero(respuesta, "direccion")
	if !ok || dir < 0 {
		return 0, errors.Errorf("respuesta de reserva sin dirección: %v", respuesta)
	}
	return uint32(dir), nil
}

func liberarEnMemoria(cliente ClienteMemoria, pid uint32, dir uint32) error {
	_, err := cliente.EnviarYValidar(utils.MensajeLiberar, map[string]interface{}{
		"pid":       pid,
		"direccion": dir,
	})
	return errors.Wrapf(err, "liberar dirección %d de pid %d", dir, pid)
}

func escribirEnMemoria(cliente ClienteMemoria, pid uint32, dir uint32, valor byte) error {
	_, err := cliente.EnviarYValidar(utils.MensajeEscribir, map[string]interface{}{
		"pid":              pid,
		"direccion_logica": dir,
		"valor":            valor,
	})
	return errors.Wrapf(err, "escribir dirección %d de pid %d", dir, pid)
}

func leerDeMemoria(cliente ClienteMemoria, pid uint32, dir uint32) (byte, error) {
	respuesta, err := cliente.EnviarYValidar(utils.MensajeLeer, map[string]interface{}{
		"pid":              pid,
		"direccion_logica": dir,
	})
	if err != nil {
		return 0, errors.Wrapf(err, "leer dirección %d de pid %d", dir, pid)
	}

	valor, ok := utils.ExtraerEntero(respuesta, "valor")
	if !ok || valor < 0 || valor > 0xff {
		return 0, errors.Errorf("respuesta de lectura inválida: %v", respuesta)
	}
	return byte(valor), nil
}

func solicitarDump(cliente ClienteMemoria) (string, error) {
	respuesta, err := cliente.EnviarYValidar(utils.MensajeMemoryDump, map[string]interface{}{})
	if err != nil {
		return "", errors.Wrap(err, "memory dump")
	}
	archivo, _ := respuesta["archivo"].(string)
	return archivo, nil
}
