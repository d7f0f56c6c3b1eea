package agreement

// defaultTemplate is the stock insertion-order agreement. Deployments can
// serve their own template source through RenderTemplate.
const defaultTemplate = `<html>
<head><title>Insertion Order — {{ campaign_name }}</title></head>
<body>
<h1>Insertion Order Agreement</h1>
<p>Campaign: <strong>{{ campaign_name }}</strong><br>
Advertiser: <strong>{{ advertiser }}</strong><br>
Date: {{ date }}</p>

<table border="1" cellpadding="4">
<tr><th>Program</th><th>Quantity</th><th>Media</th><th>Print</th><th>Freight</th><th>Total</th></tr>
{% for p in programs -%}
<tr>
<td>{{ p.program_name }}</td>
<td>{{ p.quantity | qty }}</td>
<td>{{ p.media_cost | money }}</td>
<td>{{ p.print_cost | money }}</td>
<td>{{ p.freight_cost | money }}</td>
<td>{{ p.total | money }}</td>
</tr>
{% endfor -%}
</table>

<p>Combined print run: {{ aggregate_quantity | qty }} units at {{ print_unit_price | money }} per unit.</p>
<p><strong>Campaign total: {{ campaign_total | money }}</strong></p>

{% if extended_fulfillment -%}
<p><em>One or more booked programs requires an extended fulfillment window.
Delivery dates are estimates and may shift by up to four weeks.</em></p>
{% endif -%}

<p>By submitting payment, the advertiser agrees to the booked quantities,
programs and totals listed above.</p>
</body>
</html>
`
