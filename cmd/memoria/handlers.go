package main

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

// respuestaError arma la respuesta de error que entienden los demás módulos
func respuestaError(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}

// extraerUint32 lee un campo entero no negativo que entre en 32 bits
func extraerUint32(datos map[string]interface{}, clave string) (uint32, error) {
	valor, ok := utils.ExtraerEntero(datos, clave)
	if !ok {
		return 0, errors.Errorf("%s no proporcionado o formato incorrecto", clave)
	}
	if valor < 0 || uint64(valor) > math.MaxUint32 {
		return 0, errors.Errorf("%s fuera de rango: %d", clave, valor)
	}
	return uint32(valor), nil
}

// extraerPIDYDireccion lee los campos comunes de lectura, escritura y liberación
func extraerPIDYDireccion(msg *utils.Mensaje, claveDireccion string) (uint32, uint32, error) {
	datos, err := utils.DatosMensaje(msg)
	if err != nil {
		return 0, 0, err
	}
	pid, err := extraerUint32(datos, "pid")
	if err != nil {
		return 0, 0, err
	}
	dir, err := extraerUint32(datos, claveDireccion)
	if err != nil {
		return 0, 0, err
	}
	return pid, dir, nil
}

// Handler para handshake
func handlerHandshake(msg *utils.Mensaje) (interface{}, error) {
	utils.InfoLog.Info("Handshake recibido", "origen", msg.Origen)

	geometria := memoria.Config()
	return map[string]interface{}{
		"status":         "OK",
		"tam_pagina":     geometria.TamanioPagina(),
		"bits_direccion": geometria.BitsDireccion,
		"marcos":         geometria.CantidadMarcos,
	}, nil
}

func handlerInicializarProceso(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosMensaje(msg)
	if err != nil {
		utils.ErrorLog.Error("Formato de datos incorrecto", "datos", msg.Datos)
		return respuestaError(err), nil
	}
	pid, err := extraerUint32(datos, "pid")
	if err != nil {
		utils.ErrorLog.Error("PID no proporcionado", "datos", datos)
		return respuestaError(err), nil
	}

	if err := inicializarProceso(pid); err != nil {
		utils.ErrorLog.Error("Error inicializando proceso", "pid", pid, "error", err)
		return respuestaError(err), nil
	}

	return map[string]interface{}{"status": "OK"}, nil
}

func handlerFinalizarProceso(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosMensaje(msg)
	if err != nil {
		return respuestaError(err), nil
	}
	pid, err := extraerUint32(datos, "pid")
	if err != nil {
		utils.ErrorLog.Error("PID no proporcionado", "datos", datos)
		return respuestaError(err), nil
	}

	metricas, err := finalizarProceso(pid)
	if err != nil {
		utils.ErrorLog.Error("Error finalizando proceso", "pid", pid, "error", err)
		return respuestaError(err), nil
	}

	return map[string]interface{}{
		"status":       "OK",
		"reservas":     metricas.Reservas,
		"liberaciones": metricas.Liberaciones,
		"lecturas":     metricas.Lecturas,
		"escrituras":   metricas.Escrituras,
	}, nil
}

func handlerReservar(msg *utils.Mensaje) (interface{}, error) {
	datos, err := utils.DatosMensaje(msg)
	if err != nil {
		return respuestaError(err), nil
	}
	pid, err := extraerUint32(datos, "pid")
	if err != nil {
		return respuestaError(err), nil
	}
	tamanio, err := extraerUint32(datos, "tamanio")
	if err != nil {
		return respuestaError(err), nil
	}

	dir, err := reservarMemoria(pid, tamanio)
	if err != nil {
		utils.ErrorLog.Error("Error reservando memoria", "pid", pid, "tamanio", tamanio, "error", err)
		return respuestaError(err), nil
	}

	return map[string]interface{}{
		"status":    "OK",
		"direccion": dir,
	}, nil
}

func handlerLiberar(msg *utils.Mensaje) (interface{}, error) {
	pid, dir, err := extraerPIDYDireccion(msg, "direccion")
	if err != nil {
		return respuestaError(err), nil
	}

	if err := liberarMemoria(pid, dir); err != nil {
		utils.ErrorLog.Error("Error liberando memoria", "pid", pid, "dir_logica", dir, "error", err)
		return respuestaError(err), nil
	}

	return map[string]interface{}{"status": "OK"}, nil
}

func handlerLeerMemoria(msg *utils.Mensaje) (interface{}, error) {
	pid, dirLogica, err := extraerPIDYDireccion(msg, "direccion_logica")
	if err != nil {
		utils.ErrorLog.Error("Dirección no proporcionada", "datos", msg.Datos)
		return respuestaError(err), nil
	}

	proceso, err := obtenerProceso(pid)
	if err != nil {
		return respuestaError(err), nil
	}

	dirFisica, err := memoria.Traducir(dirLogica, proceso.Espacio)
	if err != nil {
		actualizarMetricas(pid, func(m *MetricasProceso) { m.FallosTraduccion++ })
		utils.ErrorLog.Error("Error traduciendo dirección", "pid", pid, "dir_logica", dirLogica, "error", err)
		return respuestaError(err), nil
	}

	valor, err := memoria.Leer(dirLogica, proceso.Espacio)
	if err != nil {
		return respuestaError(err), nil
	}

	actualizarMetricas(pid, func(m *MetricasProceso) { m.Lecturas++ })

	// Log obligatorio
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Lectura - Dir Física: %d - Tamaño: %d", pid, dirFisica, 1))

	return map[string]interface{}{
		"status": "OK",
		"valor":  valor,
	}, nil
}

func handlerEscribirMemoria(msg *utils.Mensaje) (interface{}, error) {
	pid, dirLogica, err := extraerPIDYDireccion(msg, "direccion_logica")
	if err != nil {
		utils.ErrorLog.Error("Dirección no proporcionada", "datos", msg.Datos)
		return respuestaError(err), nil
	}

	datos, _ := utils.DatosMensaje(msg)
	valor, ok := utils.ExtraerEntero(datos, "valor")
	if !ok || valor < 0 || valor > math.MaxUint8 {
		utils.ErrorLog.Error("Valor no proporcionado", "datos", datos)
		return respuestaError(errors.New("valor no proporcionado o fuera de rango de un byte")), nil
	}

	proceso, err := obtenerProceso(pid)
	if err != nil {
		return respuestaError(err), nil
	}

	dirFisica, err := memoria.Traducir(dirLogica, proceso.Espacio)
	if err != nil {
		actualizarMetricas(pid, func(m *MetricasProceso) { m.FallosTraduccion++ })
		utils.ErrorLog.Error("Error traduciendo dirección", "pid", pid, "dir_logica", dirLogica, "error", err)
		return respuestaError(err), nil
	}

	if err := memoria.Escribir(dirLogica, proceso.Espacio, byte(valor)); err != nil {
		return respuestaError(err), nil
	}

	actualizarMetricas(pid, func(m *MetricasProceso) { m.Escrituras++ })

	// Log obligatorio
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Escritura - Dir Física: %d - Tamaño: %d", pid, dirFisica, 1))

	return map[string]interface{}{"status": "OK"}, nil
}

func handlerEspacioLibre(msg *utils.Mensaje) (interface{}, error) {
	libres := memoria.MarcosLibres()
	espacioLibre := libres * int(memoria.Config().TamanioPagina())

	utils.InfoLog.Info("Espacio libre consultado", "marcos_libres", libres, "espacio_libre_bytes", espacioLibre)

	return map[string]interface{}{
		"status":        "OK",
		"marcos_libres": libres,
		"espacio_libre": espacioLibre,
	}, nil
}
