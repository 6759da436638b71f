package main

import (
    "context"
    "fmt"
    "net"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"
    "log"

    "Aula/internal/config"
    "Aula/internal/handlers"
    "Aula/internal/registry"
    "Aula/internal/rooms"
    "Aula/internal/storage"
    wsHub "Aula/internal/websocket"
)

func main() {
    log.SetFlags(log.LstdFlags | log.Lshortfile)

    // Загружаем конфигурацию (.env + переменные окружения)
    cfg, err := config.Load()
    if err != nil {
        log.Fatalf("❌ Ошибка конфигурации: %v", err)
    }

    // Диагностическая информация
    log.Println("🚀 Запуск Aula Realtime Server")
    log.Printf("📁 Рабочая директория: %s", getCurrentDir())

    // Подключаемся к базе с журналом оценок
    store, err := storage.NewStorage(cfg.DBConn)
    if err != nil {
        log.Fatalf("❌ Ошибка подключения к базе: %v", err)
    }
    defer store.Close()

    schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
    if err := store.EnsureSchema(schemaCtx); err != nil {
        log.Printf("⚠️  Не удалось создать таблицы: %v", err)
    }
    cancelSchema()
    log.Println("✅ Подключение к базе данных установлено")

    // Создаем Hub - центральный диспетчер комнат
    reg := registry.New()
    roomStore := rooms.NewStore()
    hub := wsHub.NewHub(reg, roomStore)

    // Запускаем Hub в отдельной горутине
    go hub.Run()
    log.Println("✅ WebSocket Hub запущен")

    // Создаем обработчики HTTP запросов
    wsHandler := handlers.NewWSHandler(hub, cfg.FrontendURL)
    gradesHandler := handlers.NewGradesHandler(store, cfg.FrontendURL)

    // Настраиваем маршруты
    http.HandleFunc("/", serveStatus)
    http.HandleFunc("/ws", wsHandler.ServeWS)
    http.HandleFunc("/health", healthCheck)
    http.HandleFunc("GET /api/estudiantes/{id}/notas", gradesHandler.GetNotas)

    // Настраиваем сервер
    srv := &http.Server{
        Addr:         fmt.Sprintf("0.0.0.0:%d", cfg.Port),
        ReadTimeout:  30 * time.Second,
        WriteTimeout: 30 * time.Second,
        IdleTimeout:  120 * time.Second,
    }

    // Диагностика сети
    diagnoseNetwork(cfg.Port)

    // Запускаем HTTP сервер
    go func() {
        log.Printf("🌐 Сервер запущен на http://localhost:%d", cfg.Port)
        log.Printf("📊 Health check: http://localhost:%d/health", cfg.Port)

        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("❌ Ошибка запуска HTTP сервера: %v", err)
        }
    }()

    // Graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    <-ctx.Done()
    log.Println("🛑 Получен сигнал завершения")

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Fatalf("❌ Ошибка при завершении сервера: %v", err)
    }

    hub.Stop()
    log.Println("✅ Сервер остановлен")
}

func getCurrentDir() string {
    dir, err := os.Getwd()
    if err != nil {
        return "unknown"
    }
    return dir
}

func diagnoseNetwork(port int) {
    // Получаем локальные IP адреса
    addrs, err := net.InterfaceAddrs()
    if err != nil {
        log.Printf("⚠️  Ошибка получения сетевых интерфейсов: %v", err)
        return
    }

    log.Println("🌐 Сетевые интерфейсы:")
    for _, addr := range addrs {
        if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
            if ipnet.IP.To4() != nil {
                log.Printf("   📍 %s", ipnet.IP)
            }
        }
    }

    // Проверяем доступность порта
    listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
    if err != nil {
        log.Printf("❌ Порт %d недоступен: %v", port, err)
    } else {
        listener.Close()
        log.Printf("✅ Порт %d доступен", port)
    }
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
    status := map[string]string{
        "status":    "ok",
        "timestamp": time.Now().Format(time.RFC3339),
        "version":   "1.0.0",
        "service":   "aula-server",
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)

    response := fmt.Sprintf(`{
        "status": "%s",
        "timestamp": "%s",
        "version": "%s",
        "service": "%s"
    }`, status["status"], status["timestamp"], status["version"], status["service"])

    w.Write([]byte(response))

    log.Printf("🩺 Health check from %s", r.RemoteAddr)
}

// serveStatus отвечает на корневой путь, как это делал бэкенд колледжа
func serveStatus(w http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/" {
        log.Printf("❌ 404: %s", r.URL.Path)
        http.Error(w, "Страница не найдена", http.StatusNotFound)
        return
    }

    if r.Method != "GET" {
        log.Printf("❌ Method not allowed: %s", r.Method)
        http.Error(w, "Метод не разрешен", http.StatusMethodNotAllowed)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.Write([]byte(`{"message": "Backend server is running"}`))
}
