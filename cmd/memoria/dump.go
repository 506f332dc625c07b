package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

// crearMemoryDump vuelca la tabla de marcos y la RAM en DUMP_PATH/<timestamp>.dmp
func crearMemoryDump() (string, error) {
	timestamp := time.Now().Format("20060102-150405.000")
	rutaCompleta := filepath.Join(config.DumpPath, timestamp+".dmp")

	if err := os.MkdirAll(config.DumpPath, 0755); err != nil {
		return "", errors.Wrap(err, "error al crear directorio para dumps")
	}

	dumpFile, err := os.Create(rutaCompleta)
	if err != nil {
		return "", errors.Wrap(err, "error al crear archivo de dump")
	}
	defer dumpFile.Close()

	if err := memoria.Volcar(dumpFile); err != nil {
		return "", errors.Wrap(err, "error al escribir en archivo de dump")
	}

	// Log obligatorio
	utils.InfoLog.Info("## Memory Dump solicitado", "archivo", rutaCompleta)
	return rutaCompleta, nil
}

// handlerMemoryDump crea un volcado de la memoria completa
func handlerMemoryDump(msg *utils.Mensaje) (interface{}, error) {
	utils.InfoLog.Info("Solicitud de memory dump recibida", "origen", msg.Origen)

	ruta, err := crearMemoryDump()
	if err != nil {
		utils.ErrorLog.Error("Error al crear memory dump", "error", err)
		return respuestaError(err), nil
	}

	return map[string]interface{}{
		"status":  "OK",
		"archivo": ruta,
	}, nil
}
