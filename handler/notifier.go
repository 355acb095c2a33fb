package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"restaurant_manager/config"
	"restaurant_manager/database"
	"restaurant_manager/model"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient = redis.NewClient(&redis.Options{
		Addr: config.ConfigOr("REDIS_ADDR", "localhost:6379"),
	})

	// assinantes por pedido observado
	watchers  = make(map[uint]map[*watcherConn]bool)
	watcherMu sync.Mutex

	// último estado emitido por pedido, evita reenviar estado idêntico a cada tick
	lastEmitted = make(map[uint]orderSnapshot)

	// cancelamento do assinante redis de cada pedido
	subjectCancel = make(map[uint]context.CancelFunc)
)

// watcherConn serializa as escritas de uma conexão com um mutex próprio.
// O fan-out e o heartbeat escrevem fora do watcherMu: um cliente lento
// atrasa só a própria conexão, nunca os outros assinantes.
type watcherConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *watcherConn) write(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(messageType, data)
}

func (w *watcherConn) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.write(websocket.TextMessage, payload)
}

type orderSnapshot struct {
	Status    string
	UpdatedAt time.Time
}

type orderUpdate struct {
	OrderID    uint      `json:"orderId"`
	PublicCode string    `json:"publicCode"`
	Number     int       `json:"number"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func orderChannel(orderId uint) string {
	return fmt.Sprintf("order:%d", orderId)
}

// publishOrderUpdate é variável para os testes trocarem o transporte.
var publishOrderUpdate = func(channel string, payload []byte) error {
	return redisClient.Publish(context.Background(), channel, payload).Err()
}

// OrderStatusWebsocket: acompanhamento em tempo real de um pedido pelo id.
func OrderStatusWebsocket(c *websocket.Conn) {
	idStr := c.Params("orderId")
	id64, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		log.Printf("Invalid orderId: %s", idStr)
		c.Close()
		return
	}
	watchOrder(c, uint(id64))
}

// OrderStatusWebsocketByCode: mesma coisa, mas pelo código público.
// É o que a página de acompanhamento do cliente usa.
func OrderStatusWebsocketByCode(c *websocket.Conn) {
	code := c.Params("publicCode")

	var order model.Order
	if err := database.DB.Select("id").Where("public_code = ?", code).First(&order).Error; err != nil {
		c.WriteJSON(map[string]string{"error": "Pedido não encontrado"})
		c.Close()
		return
	}
	watchOrder(c, order.ID)
}

func watchOrder(c *websocket.Conn, orderId uint) {
	update, err := loadOrderUpdate(orderId)
	if err != nil {
		c.WriteJSON(map[string]string{"error": "Pedido não encontrado"})
		c.Close()
		return
	}

	wc := &watcherConn{conn: c}

	watcherMu.Lock()
	if watchers[orderId] == nil {
		watchers[orderId] = make(map[*watcherConn]bool)
		// primeiro assinante do pedido: liga o fan-out via redis e
		// registra o estado de comparação
		ctx, cancel := context.WithCancel(context.Background())
		subjectCancel[orderId] = cancel
		lastEmitted[orderId] = orderSnapshot{Status: update.Status, UpdatedAt: update.UpdatedAt}
		go subscribeOrderChannel(ctx, orderId)
	}
	watchers[orderId][wc] = true
	watcherMu.Unlock()

	defer func() {
		watcherMu.Lock()
		delete(watchers[orderId], wc)
		if len(watchers[orderId]) == 0 {
			// último assinante saiu: derruba assinatura e descarta cache
			delete(watchers, orderId)
			delete(lastEmitted, orderId)
			if cancel, ok := subjectCancel[orderId]; ok {
				cancel()
				delete(subjectCancel, orderId)
			}
		}
		watcherMu.Unlock()
		c.Close()
	}()

	// snapshot imediato na conexão
	if err := wc.writeJSON(update); err != nil {
		return
	}

	// segura a conexão até o cliente desligar
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// snapshotWatchers copia o conjunto de conexões de um pedido sob o lock,
// para escrever fora dele.
func snapshotWatchers(orderId uint) []*watcherConn {
	watcherMu.Lock()
	defer watcherMu.Unlock()
	conns := make([]*watcherConn, 0, len(watchers[orderId]))
	for wc := range watchers[orderId] {
		conns = append(conns, wc)
	}
	return conns
}

func dropWatcher(orderId uint, wc *watcherConn) {
	watcherMu.Lock()
	if set, ok := watchers[orderId]; ok {
		delete(set, wc)
	}
	watcherMu.Unlock()
	wc.conn.Close()
}

// subscribeOrderChannel repassa as publicações do redis para as conexões
// locais do pedido. Funciona igual com uma ou várias instâncias do servidor.
func subscribeOrderChannel(ctx context.Context, orderId uint) {
	pubsub := redisClient.Subscribe(ctx, orderChannel(orderId))
	defer pubsub.Close()

	channel := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-channel:
			if !ok {
				return
			}
			payload := []byte(msg.Payload)

			for _, wc := range snapshotWatchers(orderId) {
				if err := wc.write(websocket.TextMessage, payload); err != nil {
					dropWatcher(orderId, wc)
				}
			}
		}
	}
}

func loadOrderUpdate(orderId uint) (*orderUpdate, error) {
	var order model.Order
	if err := database.DB.
		Select("id", "public_code", "number", "status", "total", "updated_at").
		First(&order, orderId).Error; err != nil {
		return nil, err
	}
	return &orderUpdate{
		OrderID:    order.ID,
		PublicCode: order.PublicCode,
		Number:     order.Number,
		Status:     order.Status,
		Total:      order.Total,
		UpdatedAt:  order.UpdatedAt,
	}, nil
}

// SweepOrderChanges roda a cada poucos segundos: olha só os pedidos com
// assinante, compara status + updated_at com a última emissão e publica
// no redis quando mudou. Estado idêntico não gera push.
//
// O cache de emissão só avança depois do publish confirmado: se o redis
// falhar, a mudança continua pendente e a próxima varredura tenta de novo.
func SweepOrderChanges() {
	watcherMu.Lock()
	ids := make([]uint, 0, len(watchers))
	for id := range watchers {
		ids = append(ids, id)
	}
	watcherMu.Unlock()

	if len(ids) == 0 {
		return
	}

	var orders []model.Order
	if err := database.DB.
		Select("id", "public_code", "number", "status", "total", "updated_at").
		Where("id IN ?", ids).
		Find(&orders).Error; err != nil {
		log.Printf("[NOTIFIER] Erro ao varrer pedidos: %v", err)
		return
	}

	for _, order := range orders {
		watcherMu.Lock()
		last, watched := lastEmitted[order.ID]
		watcherMu.Unlock()

		changed := watched && (last.Status != order.Status || !last.UpdatedAt.Equal(order.UpdatedAt))
		if !changed {
			continue
		}

		payload, err := json.Marshal(orderUpdate{
			OrderID:    order.ID,
			PublicCode: order.PublicCode,
			Number:     order.Number,
			Status:     order.Status,
			Total:      order.Total,
			UpdatedAt:  order.UpdatedAt,
		})
		if err != nil {
			continue
		}
		if err := publishOrderUpdate(orderChannel(order.ID), payload); err != nil {
			log.Printf("[NOTIFIER] Erro ao publicar pedido %d: %v", order.ID, err)
			continue
		}

		watcherMu.Lock()
		if _, ok := lastEmitted[order.ID]; ok {
			lastEmitted[order.ID] = orderSnapshot{Status: order.Status, UpdatedAt: order.UpdatedAt}
		}
		watcherMu.Unlock()
	}
}

// HeartbeatWatchers manda ping num intervalo mais longo para detectar e
// remover conexões mortas. O ping sai fora do watcherMu, pelo mutex de
// escrita de cada conexão.
func HeartbeatWatchers() {
	watcherMu.Lock()
	ids := make([]uint, 0, len(watchers))
	for id := range watchers {
		ids = append(ids, id)
	}
	watcherMu.Unlock()

	for _, orderId := range ids {
		for _, wc := range snapshotWatchers(orderId) {
			if err := wc.write(websocket.PingMessage, nil); err != nil {
				dropWatcher(orderId, wc)
			}
		}

		watcherMu.Lock()
		if conns, ok := watchers[orderId]; ok && len(conns) == 0 {
			delete(watchers, orderId)
			delete(lastEmitted, orderId)
			if cancel, ok := subjectCancel[orderId]; ok {
				cancel()
				delete(subjectCancel, orderId)
			}
		}
		watcherMu.Unlock()
	}
}

var notifierScheduler gocron.Scheduler

// StartNotifierScheduler liga a varredura de mudanças e o heartbeat.
func StartNotifierScheduler() {
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal(err)
	}

	notifierScheduler = s

	_, err = s.NewJob(
		gocron.DurationJob(3*time.Second),
		gocron.NewTask(SweepOrderChanges),
	)
	if err != nil {
		log.Fatal(err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(30*time.Second),
		gocron.NewTask(HeartbeatWatchers),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
}

func StopNotifierScheduler() {
	if notifierScheduler != nil {
		notifierScheduler.Shutdown()
	}
}
