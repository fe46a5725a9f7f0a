package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// initLogger inicializa o logger da aplicação
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// mainThread sobe o servidor e espera o sinal de parada
func mainThread() {
	log := logger.GetAppLogger()

	app, err := InitFiberApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		log.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Error("Error during shutdown")
		}
	}()

	address := global.ServerConfig.Address
	log.WithFields(map[string]interface{}{
		"address": address,
		"backend": global.ServerConfig.BackendURL,
	}).Info("Starting server with HTTP")

	if err := app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
	}

	// avisos pendentes ainda são entregues antes de sair
	if global.Notifier != nil {
		global.Notifier.Wait()
	}
	if global.Redis != nil {
		_ = global.Redis.Close()
	}
	log.Info("Server stopped")
}

func main() {
	initLogger()
	defer logger.Close()

	InitGlobal()
	mainThread()
}
