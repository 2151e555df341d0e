package web

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Servo Rig</title>
<style>
body { font-family: sans-serif; background: #111; color: #eee; margin: 2em; }
h1 { color: #fc0; }
.servo { margin: 1em 0; }
.bar { display: inline-block; width: 360px; height: 16px; background: #333; vertical-align: middle; }
.bar div { height: 100%; background: #fc0; }
.held .bar div { background: #f40; }
.status { margin-top: 2em; color: #888; }
button { margin: 0 0.2em; }
</style>
</head>
<body>
<h1>Servo Rig</h1>
<div id="servos"></div>
<p>
<button onclick="control({all: 0})">All 0</button>
<button onclick="control({all: 90})">All 90</button>
<button onclick="control({all: 180})">All 180</button>
<button onclick="toggleLock()">Lock</button>
</p>
<div class="status" id="status"></div>
<script>
var locked = false;
function control(body) {
  fetch('/control', {method: 'POST', body: JSON.stringify(body)});
}
function toggleLock() {
  control({lock: !locked});
}
function render(state) {
  locked = state.status.locked;
  var html = '';
  for (var n = 0; n < 4; n++) {
    var s = state.servos[n];
    html += '<div class="servo' + (s.hold ? ' held' : '') + '">' +
      n + ': <span class="bar"><div style="width:' + (s.position / 180 * 100) + '%"></div></span> ' +
      s.position + '&deg; ' +
      '<button onclick="control({hold:{channel:' + n + ',state:' + !s.hold + '}})">hold</button>' +
      '</div>';
  }
  document.getElementById('servos').innerHTML = html;
  document.getElementById('status').textContent =
    'pwm:' + state.status.pca + ' imu:' + state.status.mpu +
    ' pad:' + state.status.controller + ' speed:' + state.status.speed.toFixed(1) +
    (locked ? ' LOCKED' : '') +
    ' | accel z ' + state.mpu.accel.z.toFixed(2) + 'g';
}
var ws = new WebSocket('ws://' + location.host + '/ws');
ws.onmessage = function(ev) { render(JSON.parse(ev.data)); };
ws.onerror = function() {
  setInterval(function() {
    fetch('/data').then(function(r) { return r.json(); }).then(render);
  }, 500);
};
</script>
</body>
</html>
`
